package cec

import (
	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// RetryCount bounds the resends after a lost arbitration.
const RetryCount = 3

type retryPolicy struct {
	limit int
	count int
}

// next counts one more resend. It reports false once the bound is
// exceeded, and the counter starts over.
func (p *retryPolicy) next() bool {
	p.count++
	if p.count <= p.limit {
		return true
	}
	p.count = 0
	return false
}

func (p *retryPolicy) reset() {
	p.count = 0
}

// retryOr resends the loaded frame while the retry policy allows it,
// otherwise it runs terminal.
func (c *Controller) retryOr(terminal func() error) error {
	if !c.retry.next() {
		return terminal()
	}
	glog.V(3).Infof("cec: resend %d/%d", c.retry.count, c.retry.limit)
	return c.writeField(reg.TxEnable, 1)
}

// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/cec.go/pkg/cli/cmds/cec"
)

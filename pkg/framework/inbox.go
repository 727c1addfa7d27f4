package framework

// Inbox holds the messages of one iteration. A message stays in the inbox
// until a controller takes it, so controllers at lower levels see what the
// ones before them left.
type Inbox struct {
	msgs []Message
}

// Each calls fn for every message in order and removes those fn takes.
// Messages added by fn are kept for the controllers which run next.
func (b *Inbox) Each(fn func(Message) (taken bool)) {
	msgs := b.msgs
	b.msgs = nil
	var kept []Message
	for _, msg := range msgs {
		if !fn(msg) {
			kept = append(kept, msg)
		}
	}
	b.msgs = append(kept, b.msgs...)
}

// Add appends messages visible to the controllers still to run in this
// iteration.
func (b *Inbox) Add(msgs ...Message) {
	b.msgs = append(b.msgs, msgs...)
}

// Len returns the number of messages left.
func (b *Inbox) Len() int {
	return len(b.msgs)
}

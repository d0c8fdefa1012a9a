package conversation

// Log is the ordered, append-only record of a session. It is replayed to the
// model on every request. Messages are copied on the way in and out so that
// entries cannot change after they are appended.
//
// A Log is owned by a single engine and is not safe for concurrent mutation.
type Log struct {
	msgs []Message
}

// NewLog returns a log seeded with msgs, typically restored from disk.
func NewLog(msgs ...Message) *Log {
	l := &Log{msgs: make([]Message, 0, len(msgs))}
	for _, m := range msgs {
		l.Append(m)
	}
	return l
}

func (l *Log) Append(m Message) {
	l.msgs = append(l.msgs, m.clone())
}

func (l *Log) Len() int { return len(l.msgs) }

// Messages returns a copy of the log in order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.msgs))
	for i, m := range l.msgs {
		out[i] = m.clone()
	}
	return out
}

// Last returns the newest message, if any.
func (l *Log) Last() (Message, bool) {
	if len(l.msgs) == 0 {
		return Message{}, false
	}
	return l.msgs[len(l.msgs)-1].clone(), true
}

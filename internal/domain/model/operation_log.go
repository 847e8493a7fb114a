package model

// OperationLog is an append-only sequence of LogEntry values.
// The zero value is an empty log.
type OperationLog struct {
	entries []LogEntry
}

func NewOperationLog(entries []LogEntry) OperationLog {
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	return OperationLog{entries: out}
}

// Append returns a new log with e at the end. l is left unchanged.
func (l OperationLog) Append(e LogEntry) OperationLog {
	next := make([]LogEntry, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	return OperationLog{entries: append(next, e)}
}

func (l OperationLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy in append order.
func (l OperationLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

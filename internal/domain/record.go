package domain

// Record is the raw line grouping of a single transaction as cut out of the
// statement. After segmentation it holds the start line and, optionally, one
// detail string made of every continuation line.
type Record []string

// Head returns the start line of the record, or "" for an empty record.
func (r Record) Head() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Detail returns the continuation text and whether the record has any.
func (r Record) Detail() (string, bool) {
	if len(r) < 2 {
		return "", false
	}
	return r[1], true
}

// BalanceMarker is a balance declaration found in the statement text.
type BalanceMarker struct {
	Value     float64
	LineIndex int // -1 when the marker was not found
}

// Found reports whether the marker points at a real line.
func (m BalanceMarker) Found() bool {
	return m.LineIndex >= 0
}

// StatementFile identifies a statement document in a document store.
type StatementFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

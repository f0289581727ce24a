// Package terms exposes the surface this service consumes from the term
// dictionary collaborator: a read-only "does this term exist" predicate.
package terms

// Checker reports whether a term id is known and usable. Implementations are
// read-only; an unknown id is a caller error, never a crash.
type Checker interface {
	Known(termID uint64) bool
}

// StaticDictionary is an in-memory Checker accepting ids 1..Size.
type StaticDictionary struct {
	size uint64
}

// NewStaticDictionary creates a dictionary with ids 1..size.
func NewStaticDictionary(size uint64) *StaticDictionary {
	return &StaticDictionary{size: size}
}

// Known reports whether the term id is within the seeded range.
func (d *StaticDictionary) Known(termID uint64) bool {
	return termID >= 1 && termID <= d.size
}

// Size returns the number of seeded terms.
func (d *StaticDictionary) Size() uint64 {
	return d.size
}

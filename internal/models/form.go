package models

import (
	"time"
)

// SavedForm is a persisted snapshot of a form definition. Fields are an
// independent copy; editing the live form never mutates a saved snapshot.
type SavedForm struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s SavedForm) Clone() SavedForm {
	c := s
	c.Fields = CloneFields(s.Fields)
	return c
}

func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

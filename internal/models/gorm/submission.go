package gorm

import (
	"time"
)

// FormSubmission is one stored response to a saved form. Values are keyed by
// field id; Derived holds the server-computed derived field values at
// submission time.
type FormSubmission struct {
	ID        string                 `gorm:"primaryKey" json:"id"`
	FormID    string                 `gorm:"not null;index" json:"formId"`
	Values    map[string]interface{} `gorm:"serializer:json" json:"values"`
	Derived   map[string]string      `gorm:"serializer:json" json:"derived,omitempty"`
	Status    string                 `gorm:"default:submitted" json:"status"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}

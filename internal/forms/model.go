package forms

import "time"

// FieldType is the input kind a charge field renders as.
type FieldType string

const (
	FieldNumber FieldType = "number"
	FieldText   FieldType = "text"
)

// Field is one dynamic charge field on the bill setup form. The set of
// active fields defines which charge keys bill setup accepts.
type Field struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// FieldType is the closed set of field kinds a form can contain.
type FieldType string

const (
	FieldText          FieldType = "text"
	FieldEmail         FieldType = "email"
	FieldNumber        FieldType = "number"
	FieldTextarea      FieldType = "textarea"
	FieldSelect        FieldType = "select"
	FieldCheckbox      FieldType = "checkbox"
	FieldRadio         FieldType = "radio"
	FieldDate          FieldType = "date"
	FieldDerived       FieldType = "derived"
	FieldCheckboxGroup FieldType = "checkbox-group"
)

var AllFieldTypes = []FieldType{
	FieldText, FieldEmail, FieldNumber, FieldTextarea, FieldSelect,
	FieldCheckbox, FieldRadio, FieldDate, FieldDerived, FieldCheckboxGroup,
}

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldNumber, FieldTextarea, FieldSelect,
		FieldCheckbox, FieldRadio, FieldDate, FieldDerived, FieldCheckboxGroup:
		return true
	}
	return false
}

// DerivationType selects the algorithm used to compute a derived field.
type DerivationType string

const (
	DeriveAgeFromDOB DerivationType = "age_from_dob"
	DeriveSum        DerivationType = "sum"
	DeriveDifference DerivationType = "difference"
	DeriveCustom     DerivationType = "custom"
)

func (t DerivationType) Valid() bool {
	switch t {
	case DeriveAgeFromDOB, DeriveSum, DeriveDifference, DeriveCustom:
		return true
	}
	return false
}

// Validation is the optional constraint bag attached to a field. Only a
// subset is meaningful per field type; absent keys are omitted from JSON so
// previously saved records round-trip unchanged.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`

	IsPassword         bool `json:"isPassword,omitempty"`
	RequireNumber      bool `json:"requireNumber,omitempty"`
	RequireUppercase   bool `json:"requireUppercase,omitempty"`
	RequireLowercase   bool `json:"requireLowercase,omitempty"`
	RequireSpecialChar bool `json:"requireSpecialChar,omitempty"`
}

// GroupOption is one entry of a checkbox-group field.
type GroupOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Field is one form element.
type Field struct {
	ID          string      `json:"id"`
	Type        FieldType   `json:"type"`
	Label       string      `json:"label"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required"`
	Options     []string    `json:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty"`
	Order       int         `json:"order"`

	ParentFields      []string       `json:"parentFields,omitempty"`
	DerivationFormula string         `json:"derivationFormula,omitempty"`
	DerivationType    DerivationType `json:"derivationType,omitempty"`

	GroupOptions []GroupOption `json:"groupOptions,omitempty"`
}

var ErrInvalidFieldConfig = errors.New("invalid field config")

// NewField builds a field of the given type with a fresh id and the
// type-specific defaults the builder palette starts from. Order is assigned
// by the owning store.
func NewField(t FieldType) (Field, error) {
	if !t.Valid() {
		return Field{}, fmt.Errorf("%w: unknown field type %q", ErrInvalidFieldConfig, t)
	}

	f := Field{
		ID:   uuid.New().String(),
		Type: t,
	}

	switch t {
	case FieldSelect, FieldRadio:
		f.Options = []string{"Option 1", "Option 2"}
	case FieldDerived:
		f.ParentFields = []string{}
		f.DerivationType = DeriveCustom
	case FieldCheckboxGroup:
		f.GroupOptions = []GroupOption{
			{ID: "opt1", Label: "Option 1", Value: "option1"},
			{ID: "opt2", Label: "Option 2", Value: "option2"},
		}
	}

	return f, nil
}

// Clone returns a deep copy so that snapshots never alias live state.
func (f Field) Clone() Field {
	c := f
	if f.Options != nil {
		c.Options = append([]string(nil), f.Options...)
	}
	if f.ParentFields != nil {
		c.ParentFields = append([]string(nil), f.ParentFields...)
	}
	if f.GroupOptions != nil {
		c.GroupOptions = append([]GroupOption(nil), f.GroupOptions...)
	}
	if f.Validation != nil {
		v := *f.Validation
		if f.Validation.MinLength != nil {
			n := *f.Validation.MinLength
			v.MinLength = &n
		}
		if f.Validation.MaxLength != nil {
			n := *f.Validation.MaxLength
			v.MaxLength = &n
		}
		if f.Validation.Min != nil {
			n := *f.Validation.Min
			v.Min = &n
		}
		if f.Validation.Max != nil {
			n := *f.Validation.Max
			v.Max = &n
		}
		c.Validation = &v
	}
	return c
}

// NormalizeOrder reassigns order values to the dense permutation 0..n-1
// following the slice positions. Called after delete and reorder.
func NormalizeOrder(fields []Field) {
	for i := range fields {
		fields[i].Order = i
	}
}

// CheckDerivedConfig enforces the derived-field invariants against the field
// set the field belongs to: parents must exist, must not be the field itself
// and must not themselves be derived (no chained derivation).
func CheckDerivedConfig(f Field, fields []Field) error {
	if f.Type != FieldDerived {
		return nil
	}
	if f.DerivationType != "" && !f.DerivationType.Valid() {
		return fmt.Errorf("%w: unknown derivation type %q", ErrInvalidFieldConfig, f.DerivationType)
	}
	byID := make(map[string]Field, len(fields))
	for _, other := range fields {
		byID[other.ID] = other
	}
	for _, parentID := range f.ParentFields {
		if parentID == f.ID {
			return fmt.Errorf("%w: derived field %q references itself", ErrInvalidFieldConfig, f.ID)
		}
		parent, ok := byID[parentID]
		if !ok {
			return fmt.Errorf("%w: derived field %q references unknown field %q", ErrInvalidFieldConfig, f.ID, parentID)
		}
		if parent.Type == FieldDerived {
			return fmt.Errorf("%w: derived field %q references derived field %q", ErrInvalidFieldConfig, f.ID, parentID)
		}
	}
	return nil
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
	"github.com/dhanavadh/formbuilder-backend/internal/storage"
)

// SavedFormsKey is the single gateway key holding the JSON-serialized
// SavedForm collection.
const SavedFormsKey = "savedForms"

var (
	ErrNotPermutation = errors.New("sequence is not a permutation of current fields")
	ErrFormNotFound   = errors.New("form not found")
)

// FormStore is the single source of truth for the live form under
// construction and the persisted SavedForm collection. All operations are
// synchronous and total; out-of-range ids are no-ops, never faults. The
// mutex serializes mutations because the HTTP layer serves concurrently.
type FormStore struct {
	mu sync.Mutex

	title           string
	description     string
	fields          []models.Field
	selectedFieldID string
	currentFormID   string
	savedForms      []models.SavedForm

	gateway storage.Gateway
	now     func() time.Time
}

type Option func(*FormStore)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FormStore) { s.now = now }
}

// New builds a store backed by the given gateway and loads the persisted
// SavedForm collection. A missing key means an empty collection. On a
// read or decode failure the store is still returned, empty and usable,
// together with the error; the live editing session wins over persisted
// state.
func New(gateway storage.Gateway, opts ...Option) (*FormStore, error) {
	s := &FormStore{
		gateway:    gateway,
		now:        time.Now,
		savedForms: []models.SavedForm{},
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := gateway.Get(SavedFormsKey)
	if err != nil {
		return s, fmt.Errorf("failed to load saved forms: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.savedForms); err != nil {
			s.savedForms = []models.SavedForm{}
			return s, fmt.Errorf("failed to decode saved forms: %w", err)
		}
	}
	return s, nil
}

// Snapshot is the read model exposed to the presentation layer.
type Snapshot struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Fields          []models.Field     `json:"fields"`
	SelectedFieldID *string            `json:"selectedFieldId"`
	CurrentFormID   *string            `json:"currentFormId"`
	SavedForms      []models.SavedForm `json:"savedForms"`
}

func (s *FormStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Title:       s.title,
		Description: s.description,
		Fields:      models.CloneFields(s.fields),
		SavedForms:  make([]models.SavedForm, len(s.savedForms)),
	}
	if snap.Fields == nil {
		snap.Fields = []models.Field{}
	}
	for i, f := range s.savedForms {
		snap.SavedForms[i] = f.Clone()
	}
	if s.selectedFieldID != "" {
		id := s.selectedFieldID
		snap.SelectedFieldID = &id
	}
	if s.currentFormID != "" {
		id := s.currentFormID
		snap.CurrentFormID = &id
	}
	return snap
}

func (s *FormStore) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *FormStore) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = description
}

// AddField creates a field of cfg.Type with the type defaults, applies the
// non-zero parts of cfg on top and appends it to the live form.
func (s *FormStore) AddField(cfg models.Field) (models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := models.NewField(cfg.Type)
	if err != nil {
		return models.Field{}, err
	}
	if cfg.Label != "" {
		f.Label = cfg.Label
	}
	if cfg.Placeholder != "" {
		f.Placeholder = cfg.Placeholder
	}
	f.Required = cfg.Required
	if len(cfg.Options) > 0 {
		f.Options = append([]string(nil), cfg.Options...)
	}
	if cfg.Validation != nil {
		v := *cfg.Validation
		f.Validation = &v
	}
	if cfg.ParentFields != nil {
		f.ParentFields = append([]string(nil), cfg.ParentFields...)
	}
	if cfg.DerivationFormula != "" {
		f.DerivationFormula = cfg.DerivationFormula
	}
	if cfg.DerivationType != "" {
		f.DerivationType = cfg.DerivationType
	}
	if len(cfg.GroupOptions) > 0 {
		f.GroupOptions = append([]models.GroupOption(nil), cfg.GroupOptions...)
	}
	f.Order = len(s.fields)

	if err := s.checkFieldConfig(f, s.fields); err != nil {
		return models.Field{}, err
	}

	s.fields = append(s.fields, f)
	return f.Clone(), nil
}

// FieldUpdate carries a partial field update; nil members are left
// untouched. Id, type and order are never updatable.
type FieldUpdate struct {
	Label             *string                `json:"label"`
	Placeholder       *string                `json:"placeholder"`
	Required          *bool                  `json:"required"`
	Options           []string               `json:"options"`
	Validation        *models.Validation     `json:"validation"`
	ParentFields      []string               `json:"parentFields"`
	DerivationFormula *string                `json:"derivationFormula"`
	DerivationType    *models.DerivationType `json:"derivationType"`
	GroupOptions      []models.GroupOption   `json:"groupOptions"`
}

// UpdateField merges the update into the matching field. Returns (nil, nil)
// when the id is absent.
func (s *FormStore) UpdateField(id string, update FieldUpdate) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	f := s.fields[idx].Clone()
	if update.Label != nil {
		f.Label = *update.Label
	}
	if update.Placeholder != nil {
		f.Placeholder = *update.Placeholder
	}
	if update.Required != nil {
		f.Required = *update.Required
	}
	if update.Options != nil {
		f.Options = append([]string(nil), update.Options...)
	}
	if update.Validation != nil {
		v := *update.Validation
		f.Validation = &v
	}
	if update.ParentFields != nil {
		f.ParentFields = append([]string(nil), update.ParentFields...)
	}
	if update.DerivationFormula != nil {
		f.DerivationFormula = *update.DerivationFormula
	}
	if update.DerivationType != nil {
		f.DerivationType = *update.DerivationType
	}
	if update.GroupOptions != nil {
		f.GroupOptions = append([]models.GroupOption(nil), update.GroupOptions...)
	}

	if err := s.checkFieldConfig(f, s.fields); err != nil {
		return nil, err
	}

	s.fields[idx] = f
	out := f.Clone()
	return &out, nil
}

// DeleteField removes the field and re-derives dense order values. Selection
// is deliberately left alone; consumers re-check existence.
func (s *FormStore) DeleteField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.fields[:0]
	for _, f := range s.fields {
		if f.ID != id {
			remaining = append(remaining, f)
		}
	}
	s.fields = remaining
	models.NormalizeOrder(s.fields)
}

// ReorderFields replaces the field ordering with the given id sequence. The
// sequence must be a permutation of the current field ids; anything else is
// rejected with ErrNotPermutation and the state is left untouched.
func (s *FormStore) ReorderFields(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.fields) {
		return ErrNotPermutation
	}
	byID := make(map[string]models.Field, len(s.fields))
	for _, f := range s.fields {
		byID[f.ID] = f
	}
	reordered := make([]models.Field, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return ErrNotPermutation
		}
		delete(byID, id)
		reordered = append(reordered, f)
	}

	s.fields = reordered
	models.NormalizeOrder(s.fields)
	return nil
}

// DuplicateField clones the field under a fresh id, suffixes the label and
// appends the copy at the end. Returns (nil, nil) when the id is absent.
func (s *FormStore) DuplicateField(id string) (*models.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	dup := s.fields[idx].Clone()
	dup.ID = uuid.New().String()
	dup.Label = dup.Label + " (Copy)"
	dup.Order = len(s.fields)
	s.fields = append(s.fields, dup)

	out := dup.Clone()
	return &out, nil
}

// SetSelectedField records the selection; the empty string clears it. The
// id is not checked for existence — stale selections are allowed.
func (s *FormStore) SetSelectedField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFieldID = id
}

// SaveForm snapshots the live form into the SavedForm collection and writes
// the whole collection through the gateway. A new form is inserted at the
// front; a re-save overwrites in place, preserving createdAt. The in-memory
// collection is updated even when persistence fails; the error is returned
// for the caller to surface.
func (s *FormStore) SaveForm() (models.SavedForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	form := models.SavedForm{
		ID:          s.currentFormID,
		Title:       s.title,
		Description: s.description,
		Fields:      models.CloneFields(s.fields),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if form.Fields == nil {
		form.Fields = []models.Field{}
	}
	if form.ID == "" {
		form.ID = uuid.New().String()
	}

	existing := -1
	for i, saved := range s.savedForms {
		if saved.ID == form.ID {
			existing = i
			break
		}
	}
	if existing >= 0 {
		form.CreatedAt = s.savedForms[existing].CreatedAt
		s.savedForms[existing] = form
	} else {
		s.savedForms = append([]models.SavedForm{form}, s.savedForms...)
	}
	s.currentFormID = form.ID

	return form.Clone(), s.persist()
}

// LoadForm replaces the live form with a by-value copy of the matching
// snapshot and clears the selection.
func (s *FormStore) LoadForm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, saved := range s.savedForms {
		if saved.ID == id {
			s.title = saved.Title
			s.description = saved.Description
			s.fields = models.CloneFields(saved.Fields)
			s.currentFormID = saved.ID
			s.selectedFieldID = ""
			return nil
		}
	}
	return ErrFormNotFound
}

// DeleteForm removes the snapshot and persists the new collection. Deleting
// the currently loaded form also resets the live form to the untitled state.
func (s *FormStore) DeleteForm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.savedForms[:0]
	for _, saved := range s.savedForms {
		if saved.ID != id {
			remaining = append(remaining, saved)
		}
	}
	s.savedForms = remaining

	if s.currentFormID == id {
		s.resetLive()
	}
	return s.persist()
}

// NewForm resets the live form to the untitled state without touching the
// saved collection.
func (s *FormStore) NewForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLive()
}

// Fields returns a copy of the live field set.
func (s *FormStore) Fields() []models.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := models.CloneFields(s.fields)
	if fields == nil {
		fields = []models.Field{}
	}
	return fields
}

// FindSavedForm returns a copy of the saved snapshot with the given id.
func (s *FormStore) FindSavedForm(id string) (models.SavedForm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, saved := range s.savedForms {
		if saved.ID == id {
			return saved.Clone(), true
		}
	}
	return models.SavedForm{}, false
}

func (s *FormStore) resetLive() {
	s.title = "Untitled Form"
	s.description = ""
	s.fields = nil
	s.selectedFieldID = ""
	s.currentFormID = ""
}

func (s *FormStore) indexOf(id string) int {
	for i, f := range s.fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *FormStore) checkFieldConfig(f models.Field, fields []models.Field) error {
	switch f.Type {
	case models.FieldSelect, models.FieldRadio:
		if len(f.Options) == 0 {
			return fmt.Errorf("%w: %s field needs at least one option", models.ErrInvalidFieldConfig, f.Type)
		}
	case models.FieldCheckboxGroup:
		if len(f.GroupOptions) == 0 {
			return fmt.Errorf("%w: checkbox-group field needs at least one option", models.ErrInvalidFieldConfig)
		}
	}
	return models.CheckDerivedConfig(f, fields)
}

func (s *FormStore) persist() error {
	data, err := json.Marshal(s.savedForms)
	if err != nil {
		return fmt.Errorf("failed to encode saved forms: %w", err)
	}
	if err := s.gateway.Set(SavedFormsKey, data); err != nil {
		return fmt.Errorf("failed to persist saved forms: %w", err)
	}
	return nil
}

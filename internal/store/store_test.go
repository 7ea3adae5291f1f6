package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
)

type memoryGateway struct {
	data    map[string][]byte
	failSet bool
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{data: map[string][]byte{}}
}

func (g *memoryGateway) Get(key string) ([]byte, bool, error) {
	data, ok := g.data[key]
	return data, ok, nil
}

func (g *memoryGateway) Set(key string, data []byte) error {
	if g.failSet {
		return errors.New("write failed")
	}
	g.data[key] = data
	return nil
}

func newTestStore(t *testing.T, opts ...Option) (*FormStore, *memoryGateway) {
	t.Helper()
	gateway := newMemoryGateway()
	s, err := New(gateway, opts...)
	require.NoError(t, err)
	return s, gateway
}

func addField(t *testing.T, s *FormStore, fieldType models.FieldType, label string) models.Field {
	t.Helper()
	f, err := s.AddField(models.Field{Type: fieldType, Label: label})
	require.NoError(t, err)
	return f
}

func strPtr(s string) *string { return &s }

func TestAddFieldAppendsInOrder(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	first := addField(t, s, models.FieldText, "First")
	second := addField(t, s, models.FieldNumber, "Second")

	require.Equal(0, first.Order)
	require.Equal(1, second.Order)

	fields := s.Fields()
	require.Len(fields, 2)
	require.Equal(first.ID, fields[0].ID)
}

func TestAddFieldRejectsInvalidDerivedConfig(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	_, err := s.AddField(models.Field{Type: models.FieldDerived, ParentFields: []string{"missing"}})
	require.ErrorIs(err, models.ErrInvalidFieldConfig)
	require.Empty(s.Fields())
}

func TestUpdateField(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	f := addField(t, s, models.FieldText, "Name")

	updated, err := s.UpdateField(f.ID, FieldUpdate{Label: strPtr("Full name")})
	require.NoError(err)
	require.NotNil(updated)
	require.Equal("Full name", updated.Label)
	require.Equal(f.ID, updated.ID)
	require.Equal(f.Order, updated.Order)

	// Absent id is a no-op.
	missing, err := s.UpdateField("nope", FieldUpdate{Label: strPtr("x")})
	require.NoError(err)
	require.Nil(missing)
}

func TestUpdateFieldRejectsChainedDerivation(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	num := addField(t, s, models.FieldNumber, "N")
	d1, err := s.AddField(models.Field{Type: models.FieldDerived, ParentFields: []string{num.ID}})
	require.NoError(err)
	d2, err := s.AddField(models.Field{Type: models.FieldDerived})
	require.NoError(err)

	_, err = s.UpdateField(d2.ID, FieldUpdate{ParentFields: []string{d1.ID}})
	require.ErrorIs(err, models.ErrInvalidFieldConfig)

	_, err = s.UpdateField(d2.ID, FieldUpdate{ParentFields: []string{d2.ID}})
	require.ErrorIs(err, models.ErrInvalidFieldConfig)
}

func TestDeleteFieldKeepsOrderDense(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	a := addField(t, s, models.FieldText, "A")
	b := addField(t, s, models.FieldText, "B")
	c := addField(t, s, models.FieldText, "C")

	s.DeleteField(b.ID)

	fields := s.Fields()
	require.Len(fields, 2)
	require.Equal([]string{a.ID, c.ID}, []string{fields[0].ID, fields[1].ID})
	for i, f := range fields {
		require.Equal(i, f.Order)
	}

	// Deleting an unknown id is a no-op.
	s.DeleteField("nope")
	require.Len(s.Fields(), 2)
}

func TestDeleteFieldLeavesSelectionAlone(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	f := addField(t, s, models.FieldText, "A")
	s.SetSelectedField(f.ID)
	s.DeleteField(f.ID)

	snap := s.Snapshot()
	require.NotNil(snap.SelectedFieldID)
	require.Equal(f.ID, *snap.SelectedFieldID)
}

func TestReorderFields(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	a := addField(t, s, models.FieldText, "A")
	b := addField(t, s, models.FieldText, "B")
	c := addField(t, s, models.FieldText, "C")

	require.NoError(s.ReorderFields([]string{c.ID, a.ID, b.ID}))

	fields := s.Fields()
	require.Equal([]string{c.ID, a.ID, b.ID}, []string{fields[0].ID, fields[1].ID, fields[2].ID})
	for i, f := range fields {
		require.Equal(i, f.Order)
	}
}

func TestReorderFieldsRejectsNonPermutation(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	a := addField(t, s, models.FieldText, "A")
	b := addField(t, s, models.FieldText, "B")

	require.ErrorIs(s.ReorderFields([]string{a.ID}), ErrNotPermutation)
	require.ErrorIs(s.ReorderFields([]string{a.ID, a.ID}), ErrNotPermutation)
	require.ErrorIs(s.ReorderFields([]string{a.ID, "nope"}), ErrNotPermutation)

	// State untouched after a rejected reorder.
	fields := s.Fields()
	require.Equal([]string{a.ID, b.ID}, []string{fields[0].ID, fields[1].ID})
}

func TestDuplicateField(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	min := 4
	original, err := s.AddField(models.Field{
		Type:       models.FieldText,
		Label:      "Name",
		Required:   true,
		Validation: &models.Validation{MinLength: &min},
	})
	require.NoError(err)
	addField(t, s, models.FieldText, "Other")

	dup, err := s.DuplicateField(original.ID)
	require.NoError(err)
	require.NotNil(dup)

	require.NotEqual(original.ID, dup.ID)
	require.Equal("Name (Copy)", dup.Label)
	require.Equal(2, dup.Order)
	require.True(dup.Required)
	require.Equal(4, *dup.Validation.MinLength)

	// Original untouched, order still dense.
	fields := s.Fields()
	require.Len(fields, 3)
	require.Equal("Name", fields[0].Label)
	for i, f := range fields {
		require.Equal(i, f.Order)
	}

	missing, err := s.DuplicateField("nope")
	require.NoError(err)
	require.Nil(missing)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	s.SetTitle("Survey")
	s.SetDescription("About you")
	addField(t, s, models.FieldText, "Name")
	addField(t, s, models.FieldEmail, "Email")
	savedFields := s.Fields()

	form, err := s.SaveForm()
	require.NoError(err)
	require.NotEmpty(form.ID)

	// Scribble over the live form, then load the snapshot back.
	s.NewForm()
	addField(t, s, models.FieldDate, "Unrelated")

	require.NoError(s.LoadForm(form.ID))

	snap := s.Snapshot()
	require.Equal("Survey", snap.Title)
	require.Equal("About you", snap.Description)
	require.Equal(savedFields, snap.Fields)
	require.NotNil(snap.CurrentFormID)
	require.Equal(form.ID, *snap.CurrentFormID)
	require.Nil(snap.SelectedFieldID)

	require.ErrorIs(s.LoadForm("nope"), ErrFormNotFound)
}

func TestSaveFormIdempotence(t *testing.T) {
	require := require.New(t)

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, WithClock(func() time.Time { return now }))

	s.SetTitle("Survey")
	addField(t, s, models.FieldText, "Name")

	first, err := s.SaveForm()
	require.NoError(err)

	now = now.Add(time.Hour)
	second, err := s.SaveForm()
	require.NoError(err)

	require.Equal(first.ID, second.ID)
	require.Equal(first.CreatedAt, second.CreatedAt)
	require.Equal(first.UpdatedAt.Add(time.Hour), second.UpdatedAt)
	require.Equal(first.Fields, second.Fields)

	snap := s.Snapshot()
	require.Len(snap.SavedForms, 1)
}

func TestSaveFormInsertsNewAtFront(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	s.SetTitle("First")
	first, err := s.SaveForm()
	require.NoError(err)

	s.NewForm()
	s.SetTitle("Second")
	second, err := s.SaveForm()
	require.NoError(err)

	snap := s.Snapshot()
	require.Len(snap.SavedForms, 2)
	require.Equal(second.ID, snap.SavedForms[0].ID)
	require.Equal(first.ID, snap.SavedForms[1].ID)
}

func TestSaveFormPersistsCollection(t *testing.T) {
	require := require.New(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s, gateway := newTestStore(t, WithClock(func() time.Time { return now }))

	s.SetTitle("Survey")
	addField(t, s, models.FieldText, "Name")
	_, err := s.SaveForm()
	require.NoError(err)

	data, ok := gateway.data[SavedFormsKey]
	require.True(ok)

	var persisted []models.SavedForm
	require.NoError(json.Unmarshal(data, &persisted))
	require.Equal(s.Snapshot().SavedForms, persisted)
}

func TestSaveFormPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	require := require.New(t)
	gateway := newMemoryGateway()
	gateway.failSet = true
	s, err := New(gateway)
	require.NoError(err)

	s.SetTitle("Survey")
	form, err := s.SaveForm()
	require.Error(err)

	// The collection was still updated in memory.
	_, ok := s.FindSavedForm(form.ID)
	require.True(ok)
}

func TestLoadFormCopiesByValue(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	f := addField(t, s, models.FieldText, "Name")
	form, err := s.SaveForm()
	require.NoError(err)

	require.NoError(s.LoadForm(form.ID))
	_, err = s.UpdateField(f.ID, FieldUpdate{Label: strPtr("Changed")})
	require.NoError(err)

	saved, ok := s.FindSavedForm(form.ID)
	require.True(ok)
	require.Equal("Name", saved.Fields[0].Label)
}

func TestDeleteForm(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	s.SetTitle("Keep")
	keep, err := s.SaveForm()
	require.NoError(err)

	s.NewForm()
	s.SetTitle("Drop")
	drop, err := s.SaveForm()
	require.NoError(err)

	// Deleting the current form resets the live state.
	require.NoError(s.DeleteForm(drop.ID))
	snap := s.Snapshot()
	require.Equal("Untitled Form", snap.Title)
	require.Nil(snap.CurrentFormID)
	require.Len(snap.SavedForms, 1)
	require.Equal(keep.ID, snap.SavedForms[0].ID)

	// Deleting another form leaves the live state alone.
	require.NoError(s.LoadForm(keep.ID))
	require.NoError(s.DeleteForm("nope"))
	snap = s.Snapshot()
	require.Equal("Keep", snap.Title)
	require.Len(snap.SavedForms, 1)
}

func TestNewFormKeepsSavedForms(t *testing.T) {
	require := require.New(t)
	s, _ := newTestStore(t)

	s.SetTitle("Survey")
	_, err := s.SaveForm()
	require.NoError(err)

	s.NewForm()
	snap := s.Snapshot()
	require.Equal("Untitled Form", snap.Title)
	require.Empty(snap.Fields)
	require.Nil(snap.CurrentFormID)
	require.Len(snap.SavedForms, 1)
}

func TestNewLoadsPersistedCollection(t *testing.T) {
	require := require.New(t)
	gateway := newMemoryGateway()

	seeded := []models.SavedForm{{
		ID:     "form-1",
		Title:  "Seeded",
		Fields: []models.Field{{ID: "f", Type: models.FieldText, Label: "Name"}},
	}}
	data, err := json.Marshal(seeded)
	require.NoError(err)
	gateway.data[SavedFormsKey] = data

	s, err := New(gateway)
	require.NoError(err)

	form, ok := s.FindSavedForm("form-1")
	require.True(ok)
	require.Equal("Seeded", form.Title)
}

func TestNewSurvivesCorruptCollection(t *testing.T) {
	require := require.New(t)
	gateway := newMemoryGateway()
	gateway.data[SavedFormsKey] = []byte("{not json")

	s, err := New(gateway)
	require.Error(err)
	require.NotNil(s)
	require.Empty(s.Snapshot().SavedForms)
}

package derivation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
)

func derivedField(kind models.DerivationType, parents ...string) models.Field {
	return models.Field{
		ID:             "derived",
		Type:           models.FieldDerived,
		DerivationType: kind,
		ParentFields:   parents,
	}
}

func TestSum(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveSum, "a", "b", "c")
	values := map[string]any{"a": 3, "b": "abc", "c": "5"}
	require.Equal("8", Evaluate(f, values))
}

func TestSumMissingValues(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveSum, "a", "b")
	require.Equal("0", Evaluate(f, map[string]any{}))
	require.Equal("2.5", Evaluate(f, map[string]any{"a": "2.5"}))
}

func TestDifference(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveDifference, "a", "b")
	require.Equal("6", Evaluate(f, map[string]any{"a": "10", "b": "4"}))

	// Fewer than two parents yields an empty result.
	single := derivedField(models.DeriveDifference, "a")
	require.Equal("", Evaluate(single, map[string]any{"a": "10"}))
}

func TestAgeFromDOB(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveAgeFromDOB, "dob")
	values := map[string]any{"dob": "2000-06-15"}

	before := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	require.Equal("23", evaluateAt(f, values, before))

	after := time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC)
	require.Equal("24", evaluateAt(f, values, after))

	onBirthday := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	require.Equal("24", evaluateAt(f, values, onBirthday))
}

func TestAgeFromDOBDegradesToEmpty(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveAgeFromDOB, "dob")
	now := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	require.Equal("", evaluateAt(f, map[string]any{}, now))
	require.Equal("", evaluateAt(f, map[string]any{"dob": "not a date"}, now))
}

func TestCustomFormula(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveCustom, "a", "b")
	f.DerivationFormula = "{a} + {b}"
	require.Equal("5", Evaluate(f, map[string]any{"a": "2", "b": "3"}))

	f.DerivationFormula = "({a} + {b}) * 2"
	require.Equal("10", Evaluate(f, map[string]any{"a": "2", "b": "3"}))
}

func TestCustomFormulaRejectsNonWhitelisted(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveCustom, "a")
	f.DerivationFormula = "{a} + alert(1)"
	require.Equal("", Evaluate(f, map[string]any{"a": "2"}))

	// A parent value that injects letters is rejected too.
	f.DerivationFormula = "{a} + 1"
	require.Equal("", Evaluate(f, map[string]any{"a": "evil()"}))
}

func TestCustomFormulaDegradesToEmpty(t *testing.T) {
	require := require.New(t)

	f := derivedField(models.DeriveCustom, "a")

	f.DerivationFormula = ""
	require.Equal("", Evaluate(f, map[string]any{"a": "2"}))

	f.DerivationFormula = "{a} / 0"
	require.Equal("", Evaluate(f, map[string]any{"a": "2"}))

	f.DerivationFormula = "{a} +"
	require.Equal("", Evaluate(f, map[string]any{"a": "2"}))

	// Missing parent substitutes the empty string.
	f.DerivationFormula = "{a} - 3"
	require.Equal("-3", Evaluate(f, map[string]any{}))
}

func TestEvaluateNonDerived(t *testing.T) {
	require := require.New(t)

	f := models.Field{ID: "n", Type: models.FieldNumber}
	require.Equal("", Evaluate(f, map[string]any{"n": "5"}))

	noParents := derivedField(models.DeriveSum)
	require.Equal("", Evaluate(noParents, map[string]any{}))
}

func TestEvaluateAll(t *testing.T) {
	require := require.New(t)

	fields := []models.Field{
		{ID: "a", Type: models.FieldNumber},
		{ID: "b", Type: models.FieldNumber},
		derivedField(models.DeriveSum, "a", "b"),
	}
	fields[2].ID = "total"

	derived := EvaluateAll(fields, map[string]any{"a": "1", "b": "2"})
	require.Equal(map[string]string{"total": "3"}, derived)
}

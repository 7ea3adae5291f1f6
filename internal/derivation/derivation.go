package derivation

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
)

// formulaWhitelist admits only digits, whitespace, decimal points and the
// four arithmetic operators with parentheses. Anything else in a substituted
// formula is rejected without evaluation.
var formulaWhitelist = regexp.MustCompile(`^[\d\s+\-*/().]+$`)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Evaluate computes the display value of a derived field from the current
// values of every field, keyed by field id. It never fails: unsupported or
// malformed configuration degrades to the empty string.
func Evaluate(f models.Field, values map[string]any) string {
	return evaluateAt(f, values, time.Now())
}

// EvaluateAll conservatively recomputes every derived field. Callers invoke
// it after each value change; the computation is pure, so over-invoking is
// harmless.
func EvaluateAll(fields []models.Field, values map[string]any) map[string]string {
	derived := make(map[string]string)
	for _, f := range fields {
		if f.Type == models.FieldDerived {
			derived[f.ID] = Evaluate(f, values)
		}
	}
	return derived
}

func evaluateAt(f models.Field, values map[string]any, now time.Time) string {
	if f.Type != models.FieldDerived || len(f.ParentFields) == 0 {
		return ""
	}

	switch f.DerivationType {
	case models.DeriveAgeFromDOB:
		return ageFromDOB(valueString(values[f.ParentFields[0]]), now)
	case models.DeriveSum:
		total := 0.0
		for _, parentID := range f.ParentFields {
			n, ok := valueNumber(values[parentID])
			if ok {
				total += n
			}
		}
		return formatNumber(total)
	case models.DeriveDifference:
		if len(f.ParentFields) < 2 {
			return ""
		}
		a, _ := valueNumber(values[f.ParentFields[0]])
		b, _ := valueNumber(values[f.ParentFields[1]])
		return formatNumber(a - b)
	case models.DeriveCustom:
		return evalFormula(f, values)
	}
	return ""
}

func ageFromDOB(dob string, now time.Time) string {
	if dob == "" {
		return ""
	}
	var birth time.Time
	var err error
	for _, layout := range dateLayouts {
		birth, err = time.Parse(layout, dob)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ""
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return strconv.Itoa(age)
}

func evalFormula(f models.Field, values map[string]any) string {
	if f.DerivationFormula == "" {
		return ""
	}
	formula := f.DerivationFormula
	for _, parentID := range f.ParentFields {
		formula = strings.ReplaceAll(formula, "{"+parentID+"}", valueString(values[parentID]))
	}
	if !formulaWhitelist.MatchString(formula) {
		return ""
	}
	n, err := evalExpr(formula)
	if err != nil {
		log.Printf("formula evaluation error: %v", err)
		return ""
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return ""
	}
	return formatNumber(n)
}

func valueString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return formatNumber(s)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func valueNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package validation

import (
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
)

// Result is a validation outcome. Failures are data, not errors; the caller
// decides how to surface Message.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Contract is the compiled validation contract of a single field. Check runs
// every rule in layering order and reports the first failure.
type Contract struct {
	FieldID string
	rules   []rule
}

type rule func(v any) (ok bool, message string)

var (
	emailRe       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitRe       = regexp.MustCompile(`\d`)
	uppercaseRe   = regexp.MustCompile(`[A-Z]`)
	lowercaseRe   = regexp.MustCompile(`[a-z]`)
	specialCharRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const msgRequired = "This field is required"

// Compile maps a field to its validation contract. The per-type base rule
// comes first; configured constraints layer on top of it, never instead of it.
func Compile(f models.Field) Contract {
	c := Contract{FieldID: f.ID}

	switch f.Type {
	case models.FieldText, models.FieldTextarea:
		c.compileText(f)
	case models.FieldEmail:
		c.add(func(v any) (bool, string) {
			s := asString(v)
			if f.Required && s == "" {
				return false, msgRequired
			}
			if s != "" && !emailRe.MatchString(s) {
				return false, "Please enter a valid email address"
			}
			return true, ""
		})
	case models.FieldNumber:
		c.compileNumber(f)
	case models.FieldSelect, models.FieldRadio:
		c.add(func(v any) (bool, string) {
			s := asString(v)
			if s == "" {
				if f.Required {
					return false, "Please select an option"
				}
				return true, ""
			}
			if len(f.Options) > 0 && !contains(f.Options, s) {
				return false, "Please select an option"
			}
			return true, ""
		})
	case models.FieldCheckbox:
		c.add(func(v any) (bool, string) {
			if f.Required && !asBool(v) {
				return false, msgRequired
			}
			return true, ""
		})
	case models.FieldCheckboxGroup:
		c.add(func(v any) (bool, string) {
			if f.Required && len(asStringSlice(v)) == 0 {
				return false, "Please select at least one option"
			}
			return true, ""
		})
	case models.FieldDate:
		c.add(func(v any) (bool, string) {
			if f.Required && asString(v) == "" {
				return false, "Please select a date"
			}
			return true, ""
		})
	case models.FieldDerived:
		// Read-only display string; required means the computed value
		// must be non-empty.
		c.add(func(v any) (bool, string) {
			if f.Required && asString(v) == "" {
				return false, msgRequired
			}
			return true, ""
		})
	default:
		c.compileText(f)
	}

	return c
}

func (c *Contract) compileText(f models.Field) {
	required := f.Required
	c.add(func(v any) (bool, string) {
		if required && asString(v) == "" {
			return false, msgRequired
		}
		return true, ""
	})

	val := f.Validation
	if val == nil {
		return
	}

	if val.MinLength != nil {
		min := *val.MinLength
		c.add(func(v any) (bool, string) {
			if len([]rune(asString(v))) < min {
				return false, fmt.Sprintf("Minimum %d characters required", min)
			}
			return true, ""
		})
	}
	if val.MaxLength != nil {
		max := *val.MaxLength
		c.add(func(v any) (bool, string) {
			if len([]rune(asString(v))) > max {
				return false, fmt.Sprintf("Maximum %d characters allowed", max)
			}
			return true, ""
		})
	}
	if val.Pattern != "" {
		re, err := regexp.Compile(val.Pattern)
		if err != nil {
			log.Printf("skipping invalid pattern for field %s: %v", f.ID, err)
		} else {
			c.add(func(v any) (bool, string) {
				if !re.MatchString(asString(v)) {
					return false, "Invalid format"
				}
				return true, ""
			})
		}
	}

	if val.IsPassword {
		// Minimum 8 characters holds unconditionally for password fields.
		c.add(func(v any) (bool, string) {
			if len([]rune(asString(v))) < 8 {
				return false, "Password must be at least 8 characters long"
			}
			return true, ""
		})
		if val.RequireNumber {
			c.addPattern(digitRe, "Password must contain at least one number")
		}
		if val.RequireUppercase {
			c.addPattern(uppercaseRe, "Password must contain at least one uppercase letter")
		}
		if val.RequireLowercase {
			c.addPattern(lowercaseRe, "Password must contain at least one lowercase letter")
		}
		if val.RequireSpecialChar {
			c.addPattern(specialCharRe, "Password must contain at least one special character")
		}
	}
}

func (c *Contract) compileNumber(f models.Field) {
	required := f.Required
	var min, max *float64
	if f.Validation != nil {
		min = f.Validation.Min
		max = f.Validation.Max
	}

	c.add(func(v any) (bool, string) {
		if v == nil || v == "" {
			if required {
				return false, "Please enter a valid number"
			}
			return true, ""
		}
		n, ok := asNumber(v)
		if !ok {
			return false, "Please enter a valid number"
		}
		if min != nil && n < *min {
			return false, fmt.Sprintf("Minimum value is %s", formatNumber(*min))
		}
		if max != nil && n > *max {
			return false, fmt.Sprintf("Maximum value is %s", formatNumber(*max))
		}
		// Without an explicit lower bound a required number must not be
		// negative; a configured min re-derives the bound.
		if required && min == nil && n < 0 {
			return false, "Please enter a valid number"
		}
		return true, ""
	})
}

func (c *Contract) add(r rule) {
	c.rules = append(c.rules, r)
}

func (c *Contract) addPattern(re *regexp.Regexp, message string) {
	c.add(func(v any) (bool, string) {
		if !re.MatchString(asString(v)) {
			return false, message
		}
		return true, ""
	})
}

// Check runs the contract against a value. All rules must pass; the first
// failing rule's message is reported.
func (c Contract) Check(v any) Result {
	for _, r := range c.rules {
		if ok, msg := r(v); !ok {
			return Result{Valid: false, Message: msg}
		}
	}
	return Result{Valid: true}
}

// CheckAll validates a values map against every field's contract and returns
// the failure messages keyed by field id.
func CheckAll(fields []models.Field, values map[string]any) map[string]string {
	failures := make(map[string]string)
	for _, f := range fields {
		res := Compile(f).Check(values[f.ID])
		if !res.Valid {
			failures[f.ID] = res.Message
		}
	}
	return failures
}

func asString(v any) string {
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
		return ""
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
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

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

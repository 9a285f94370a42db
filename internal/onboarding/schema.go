package onboarding

import (
	"fmt"
	"strings"
	"time"
)

// FieldRule is one declarative validation rule. Validation is pure and
// synchronous: it classifies draft data and has no side effects, so it is
// safe to run on every field change.
type FieldRule struct {
	Field       string
	Required    bool
	MinLen      int
	MaxLen      int
	GreaterThan *float64
	Min         *float64
	Max         *float64
	OneOf       []string
	Date        bool
	NotFuture   bool
	MustBeTrue  bool
}

// CrossRule checks consistency across a step's fields. It returns the
// offending field and message, or empty strings when satisfied.
type CrossRule func(f Fields) (field, message string)

// StepSchema holds the rules for one step
type StepSchema struct {
	Step  StepID
	Rules []FieldRule
	Cross []CrossRule
}

const dateLayout = "2006-01-02"

func ptr(f float64) *float64 { return &f }

var wizardSchemas = map[StepID]StepSchema{
	StepCompanyInfo: {
		Step: StepCompanyInfo,
		Rules: []FieldRule{
			{Field: "company_name", Required: true, MinLen: 2, MaxLen: 120},
			{Field: "incorporation_date", Required: true, Date: true, NotFuture: true},
			{Field: "sector", Required: true, OneOf: []string{
				"saas", "fintech", "marketplace", "deeptech", "healthtech", "climate", "consumer", "other",
			}},
			{Field: "country", MinLen: 2, MaxLen: 56},
			{Field: "website", MaxLen: 255},
			{Field: "description", MaxLen: 2000},
		},
	},
	StepFundraising: {
		Step: StepFundraising,
		Rules: []FieldRule{
			{Field: "raise_amount", Required: true, GreaterThan: ptr(0), Max: ptr(1e9)},
			{Field: "equity_offered_pct", Required: true, GreaterThan: ptr(0), Max: ptr(100)},
			{Field: "pre_money_valuation", Min: ptr(0)},
			{Field: "instrument", Required: true, OneOf: []string{"equity", "safe", "convertible-note"}},
		},
	},
	StepFounderKYC: {
		Step: StepFounderKYC,
		Rules: []FieldRule{
			{Field: "legal_name", Required: true, MinLen: 2, MaxLen: 120},
			{Field: "date_of_birth", Required: true, Date: true, NotFuture: true},
			{Field: "nationality", Required: true, MinLen: 2, MaxLen: 56},
			{Field: "id_document_type", Required: true, OneOf: []string{"passport", "drivers-license", "national-id"}},
			{Field: "id_document_number", Required: true, MinLen: 4, MaxLen: 32},
		},
		Cross: []CrossRule{minimumAge(18)},
	},
	StepFinancials: {
		Step: StepFinancials,
		Rules: []FieldRule{
			{Field: "provider", Required: true, OneOf: []string{"plaid", "codat", "manual"}},
			{Field: "account_ref", MaxLen: 120},
			{Field: "institution_name", MaxLen: 120},
			{Field: "annual_revenue", Min: ptr(0)},
		},
		Cross: []CrossRule{manualNeedsInstitution},
	},
	StepDocuments: {
		Step: StepDocuments,
	},
	StepReview: {
		Step: StepReview,
		Rules: []FieldRule{
			{Field: "confirm_accuracy", Required: true, MustBeTrue: true},
		},
	},
}

// Validate classifies a step's entered fields against its schema. It is
// deterministic over the draft slice alone.
func Validate(step StepID, fields Fields) ValidationResult {
	result := make(ValidationResult)
	schema, ok := wizardSchemas[step]
	if !ok {
		return result
	}

	for _, rule := range schema.Rules {
		if msg := rule.check(fields[rule.Field]); msg != "" {
			result[rule.Field] = msg
		}
	}
	for _, cross := range schema.Cross {
		field, msg := cross(fields)
		if msg != "" && result[field] == "" {
			result[field] = msg
		}
	}
	return result
}

func (r FieldRule) check(value interface{}) string {
	if isEmpty(value) {
		if r.Required {
			return "required"
		}
		return ""
	}

	if r.MustBeTrue {
		if b, ok := value.(bool); !ok || !b {
			return "must be accepted"
		}
		return ""
	}

	if r.GreaterThan != nil || r.Min != nil || r.Max != nil {
		n, ok := asNumber(value)
		if !ok {
			return "must be a number"
		}
		if r.GreaterThan != nil && n <= *r.GreaterThan {
			return fmt.Sprintf("must be greater than %g", *r.GreaterThan)
		}
		if r.Min != nil && n < *r.Min {
			return fmt.Sprintf("must be at least %g", *r.Min)
		}
		if r.Max != nil && n > *r.Max {
			return fmt.Sprintf("must not exceed %g", *r.Max)
		}
		return ""
	}

	s, ok := asString(value)
	if !ok {
		return "must be text"
	}

	if r.Date {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return "must be a date (YYYY-MM-DD)"
		}
		if r.NotFuture && parsed.After(time.Now()) {
			return "must not be in the future"
		}
	}
	if r.MinLen > 0 && len(s) < r.MinLen {
		return fmt.Sprintf("must be at least %d characters", r.MinLen)
	}
	if r.MaxLen > 0 && len(s) > r.MaxLen {
		return fmt.Sprintf("must be at most %d characters", r.MaxLen)
	}
	if len(r.OneOf) > 0 {
		for _, allowed := range r.OneOf {
			if s == allowed {
				return ""
			}
		}
		return "must be one of: " + strings.Join(r.OneOf, ", ")
	}
	return ""
}

func minimumAge(years int) CrossRule {
	return func(f Fields) (string, string) {
		s, ok := asString(f["date_of_birth"])
		if !ok {
			return "", ""
		}
		dob, err := time.Parse(dateLayout, s)
		if err != nil {
			return "", ""
		}
		if dob.AddDate(years, 0, 0).After(time.Now()) {
			return "date_of_birth", fmt.Sprintf("must be at least %d years old", years)
		}
		return "", ""
	}
}

func manualNeedsInstitution(f Fields) (string, string) {
	provider, _ := asString(f["provider"])
	if provider != "manual" {
		return "", ""
	}
	if isEmpty(f["institution_name"]) {
		return "institution_name", "required"
	}
	return "", ""
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

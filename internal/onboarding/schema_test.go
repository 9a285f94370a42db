package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyInfoMissingIncorporationDate(t *testing.T) {
	draft := NewDraft()
	draft.SetField(StepCompanyInfo, "company_name", "Acme Robotics")
	draft.SetField(StepCompanyInfo, "sector", "deeptech")

	result := Validate(StepCompanyInfo, draft.Step(StepCompanyInfo))

	assert.Equal(t, "required", result["incorporation_date"])
	assert.NotContains(t, result, "company_name")
	assert.False(t, result.Valid())
}

func TestCompanyInfoValid(t *testing.T) {
	fields := Fields{
		"company_name":       "Acme Robotics",
		"incorporation_date": "2021-04-01",
		"sector":             "deeptech",
	}

	assert.True(t, Validate(StepCompanyInfo, fields).Valid())
}

func TestIncorporationDateFormat(t *testing.T) {
	fields := Fields{
		"company_name":       "Acme",
		"incorporation_date": "01/04/2021",
		"sector":             "saas",
	}

	result := Validate(StepCompanyInfo, fields)
	assert.Equal(t, "must be a date (YYYY-MM-DD)", result["incorporation_date"])
}

func TestIncorporationDateNotFuture(t *testing.T) {
	fields := Fields{
		"company_name":       "Acme",
		"incorporation_date": "2999-01-01",
		"sector":             "saas",
	}

	result := Validate(StepCompanyInfo, fields)
	assert.Equal(t, "must not be in the future", result["incorporation_date"])
}

func TestEquityOfferedBounds(t *testing.T) {
	fields := Fields{
		"raise_amount":       500000.0,
		"equity_offered_pct": 120.0,
		"instrument":         "equity",
	}

	result := Validate(StepFundraising, fields)
	assert.Equal(t, "must not exceed 100", result["equity_offered_pct"])

	fields["equity_offered_pct"] = 0.0
	result = Validate(StepFundraising, fields)
	assert.Equal(t, "must be greater than 0", result["equity_offered_pct"])

	fields["equity_offered_pct"] = 12.5
	assert.True(t, Validate(StepFundraising, fields).Valid())
}

func TestInstrumentEnum(t *testing.T) {
	fields := Fields{
		"raise_amount":       500000.0,
		"equity_offered_pct": 10.0,
		"instrument":         "handshake",
	}

	result := Validate(StepFundraising, fields)
	assert.Equal(t, "must be one of: equity, safe, convertible-note", result["instrument"])
}

func TestNumericFieldRejectsText(t *testing.T) {
	fields := Fields{
		"raise_amount":       "a lot",
		"equity_offered_pct": 10.0,
		"instrument":         "safe",
	}

	result := Validate(StepFundraising, fields)
	assert.Equal(t, "must be a number", result["raise_amount"])
}

func TestKYCMinimumAge(t *testing.T) {
	fields := Fields{
		"legal_name":         "Ada Founder",
		"date_of_birth":      "2020-01-01",
		"nationality":        "Dutch",
		"id_document_type":   "passport",
		"id_document_number": "X1234567",
	}

	result := Validate(StepFounderKYC, fields)
	assert.Equal(t, "must be at least 18 years old", result["date_of_birth"])

	fields["date_of_birth"] = "1990-06-15"
	assert.True(t, Validate(StepFounderKYC, fields).Valid())
}

func TestManualFinancialsRequireInstitution(t *testing.T) {
	fields := Fields{"provider": "manual"}

	result := Validate(StepFinancials, fields)
	assert.Equal(t, "required", result["institution_name"])

	fields["institution_name"] = "First National"
	assert.True(t, Validate(StepFinancials, fields).Valid())

	delete(fields, "institution_name")
	fields["provider"] = "plaid"
	assert.True(t, Validate(StepFinancials, fields).Valid())
}

func TestReviewRequiresConfirmation(t *testing.T) {
	result := Validate(StepReview, Fields{})
	assert.Equal(t, "required", result["confirm_accuracy"])

	result = Validate(StepReview, Fields{"confirm_accuracy": false})
	assert.Equal(t, "must be accepted", result["confirm_accuracy"])

	assert.True(t, Validate(StepReview, Fields{"confirm_accuracy": true}).Valid())
}

func TestValidationIsPure(t *testing.T) {
	fields := Fields{"company_name": "Acme"}

	first := Validate(StepCompanyInfo, fields)
	second := Validate(StepCompanyInfo, fields)

	assert.Equal(t, first, second)
	assert.Equal(t, Fields{"company_name": "Acme"}, fields)
}

package onboarding

// documentsField is where the draft keeps references to staged uploads.
// Contents stay with the upload manager; the draft holds ids only.
const documentsField = "files"

// DefaultSteps returns the wizard's ordered step definitions
func DefaultSteps() []StepDefinition {
	return []StepDefinition{
		{ID: StepCompanyInfo, Title: "Company information", Order: 1, Required: true,
			Fields: schemaFields(StepCompanyInfo)},
		{ID: StepFundraising, Title: "Fundraising terms", Order: 2, Required: true,
			Fields: schemaFields(StepFundraising)},
		{ID: StepFounderKYC, Title: "Founder verification", Order: 3, Required: true,
			Fields: schemaFields(StepFounderKYC)},
		{ID: StepFinancials, Title: "Financial data", Order: 4, Required: true,
			Fields: schemaFields(StepFinancials)},
		{ID: StepDocuments, Title: "Documents", Order: 5, Required: true,
			Fields: []string{documentsField},
			complete: func(d Draft) bool {
				return len(DocumentRefs(d)) > 0
			}},
		{ID: StepReview, Title: "Review & submit", Order: 6, Required: true,
			Fields: schemaFields(StepReview)},
	}
}

func schemaFields(step StepID) []string {
	schema := wizardSchemas[step]
	fields := make([]string, 0, len(schema.Rules))
	for _, r := range schema.Rules {
		fields = append(fields, r.Field)
	}
	return fields
}

// DocumentRefs lists the staged file ids recorded in the draft. The slice
// type varies depending on whether the draft round-tripped through JSON.
func DocumentRefs(d Draft) []string {
	v, ok := d.Field(StepDocuments, documentsField)
	if !ok {
		return nil
	}
	switch refs := v.(type) {
	case []string:
		return refs
	case []interface{}:
		out := make([]string, 0, len(refs))
		for _, r := range refs {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SetDocumentRefs records the staged file ids in the draft
func SetDocumentRefs(d Draft, refs []string) {
	d.SetField(StepDocuments, documentsField, refs)
}

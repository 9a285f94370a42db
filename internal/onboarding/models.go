package onboarding

import (
	"time"

	"github.com/google/uuid"

	"capitalflow/founder-portal/founder-portal-backend/internal/submission"
)

// StepID identifies one page of the onboarding wizard
type StepID string

const (
	StepCompanyInfo StepID = "company-info"
	StepFundraising StepID = "fundraising"
	StepFounderKYC  StepID = "founder-kyc"
	StepFinancials  StepID = "financials"
	StepDocuments   StepID = "documents"
	StepReview      StepID = "review"

	// StateSubmitted is the terminal wizard state, reached only through a
	// successful submission.
	StateSubmitted = "submitted"
)

// Fields holds one step's entered values
type Fields map[string]interface{}

// Draft is the single source of truth for all steps' in-progress data. It
// is never persisted to the backend until final submission.
type Draft map[StepID]Fields

// NewDraft returns an empty draft
func NewDraft() Draft {
	return make(Draft)
}

// Step returns the field map for a step, creating it on first access
func (d Draft) Step(id StepID) Fields {
	if d[id] == nil {
		d[id] = make(Fields)
	}
	return d[id]
}

// Field returns one entered value
func (d Draft) Field(step StepID, field string) (interface{}, bool) {
	fields, ok := d[step]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}

// SetField records a value, last write wins. Setting a field never triggers
// validation; callers validate separately.
func (d Draft) SetField(step StepID, field string, value interface{}) {
	d.Step(step)[field] = value
}

// Snapshot returns a deep copy of the draft
func (d Draft) Snapshot() Draft {
	out := make(Draft, len(d))
	for step, fields := range d {
		copied := make(Fields, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		out[step] = copied
	}
	return out
}

// ValidationResult maps field names to human-readable error messages.
// An empty result means the step is valid.
type ValidationResult map[string]string

// Valid reports whether no field has an error
func (v ValidationResult) Valid() bool {
	return len(v) == 0
}

// StepDefinition is the static description of one wizard step
type StepDefinition struct {
	ID       StepID `json:"id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Required bool   `json:"required"`
	Fields   []string
	// complete overrides the default "step validates clean" predicate
	complete func(d Draft) bool
}

// IsComplete determines whether the step can be left behind
func (s StepDefinition) IsComplete(d Draft) bool {
	if s.complete != nil {
		return s.complete(d)
	}
	return Validate(s.ID, d.Step(s.ID)).Valid()
}

// DraftStatus is the lifecycle state of a draft record
type DraftStatus string

const (
	StatusInProgress DraftStatus = "in-progress"
	StatusSubmitted  DraftStatus = "submitted"
)

// DraftRecord is the per-founder session envelope kept by the draft store
type DraftRecord struct {
	SessionID  uuid.UUID             `json:"session_id"`
	FounderID  string                `json:"founder_id"`
	Draft      Draft                 `json:"draft"`
	StepIndex  int                   `json:"step_index"`
	Status     DraftStatus           `json:"status"`
	Submission *submission.Progress  `json:"submission"`
	// Generation bumps on reset; in-flight submission results from an older
	// generation are discarded instead of applied.
	Generation int       `json:"generation"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDraftRecord starts a fresh wizard session for a founder
func NewDraftRecord(founderID string) *DraftRecord {
	now := time.Now()
	return &DraftRecord{
		SessionID:  uuid.New(),
		FounderID:  founderID,
		Draft:      NewDraft(),
		Status:     StatusInProgress,
		Submission: submission.NewProgress(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a copy safe to hand across the store boundary
func (r *DraftRecord) Clone() *DraftRecord {
	copied := *r
	copied.Draft = r.Draft.Snapshot()
	if r.Submission != nil {
		sub := *r.Submission
		sub.Completed = make(map[submission.Phase]bool, len(r.Submission.Completed))
		for k, v := range r.Submission.Completed {
			sub.Completed[k] = v
		}
		sub.UploadedFiles = make(map[string]string, len(r.Submission.UploadedFiles))
		for k, v := range r.Submission.UploadedFiles {
			sub.UploadedFiles[k] = v
		}
		copied.Submission = &sub
	}
	return &copied
}

// StepProgress is the API view of one step's state
type StepProgress struct {
	ID        StepID `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Required  bool   `json:"required"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// Progress is the API view of the overall wizard state
type Progress struct {
	SessionID       uuid.UUID      `json:"session_id"`
	Status          DraftStatus    `json:"status"`
	CurrentStep     StepID         `json:"current_step"`
	TotalSteps      int            `json:"total_steps"`
	PercentComplete float64        `json:"percent_complete"`
	Steps           []StepProgress `json:"steps"`
}

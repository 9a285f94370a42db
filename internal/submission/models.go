package submission

import (
	"github.com/google/uuid"

	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Phase identifies one backend call in the submission sequence
type Phase string

const (
	PhaseCompany    Phase = "company"
	PhaseKYC        Phase = "kyc"
	PhaseFinancials Phase = "financials"
	PhaseDocuments  Phase = "documents"
)

// PhaseOrder is the declared dependency order: each phase waits for the
// previous one's success.
var PhaseOrder = []Phase{PhaseCompany, PhaseKYC, PhaseFinancials, PhaseDocuments}

// Payload is the assembled draft ready for submission
type Payload struct {
	Company    marketplace.CompanyProfile
	KYC        marketplace.KYCSubmission
	Financials marketplace.FinancialLink
	Documents  []Document
}

// Document is one staged file pending transfer
type Document struct {
	FileID      uuid.UUID
	Name        string
	ContentType string
	Content     []byte
}

// Progress records what already succeeded remotely, so a retry resumes at
// the failed phase instead of duplicating completed calls.
type Progress struct {
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	CompanyID      string            `json:"company_id,omitempty"`
	Completed      map[Phase]bool    `json:"completed,omitempty"`
	UploadedFiles  map[string]string `json:"uploaded_files,omitempty"` // staged file id -> backend record id
}

// NewProgress returns an empty progress record
func NewProgress() *Progress {
	return &Progress{
		Completed:     make(map[Phase]bool),
		UploadedFiles: make(map[string]string),
	}
}

func (p *Progress) ensure() {
	if p.Completed == nil {
		p.Completed = make(map[Phase]bool)
	}
	if p.UploadedFiles == nil {
		p.UploadedFiles = make(map[string]string)
	}
}

// FileResult is the per-file outcome of the documents phase
type FileResult struct {
	FileID   uuid.UUID `json:"file_id"`
	Name     string    `json:"name"`
	Uploaded bool      `json:"uploaded"`
	RemoteID string    `json:"remote_id,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Result is the outcome of one orchestrated submission attempt
type Result struct {
	Submitted       bool         `json:"submitted"`
	CompanyID       string       `json:"company_id,omitempty"`
	SucceededPhases []Phase      `json:"succeeded_phases"`
	FailedPhase     Phase        `json:"failed_phase,omitempty"`
	Failure         error        `json:"-"`
	FailureMessage  string       `json:"failure,omitempty"`
	Files           []FileResult `json:"files,omitempty"`
}

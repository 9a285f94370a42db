package onboarding

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/internal/submission"
	"capitalflow/founder-portal/founder-portal-backend/internal/uploads"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Service owns wizard sessions: one draft per founder, navigation through
// the step controller, document staging and the final orchestrated
// submission.
type Service struct {
	store        DraftStore
	uploads      *uploads.Manager
	orchestrator *submission.Orchestrator
	logger       *zap.Logger
}

// NewService creates the onboarding service
func NewService(store DraftStore, uploadMgr *uploads.Manager, orchestrator *submission.Orchestrator, logger *zap.Logger) *Service {
	return &Service{
		store:        store,
		uploads:      uploadMgr,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (s *Service) controllerFor(record *DraftRecord) *Controller {
	return NewController().Restore(record.StepIndex, record.Status == StatusSubmitted)
}

func (s *Service) progressOf(record *DraftRecord) *Progress {
	progress := s.controllerFor(record).Progress(record.Draft)
	progress.SessionID = record.SessionID
	return &progress
}

// StartSession returns the founder's wizard session, creating one on first
// contact. An in-progress draft is resumed, never replaced.
func (s *Service) StartSession(ctx context.Context, founderID string) (*Progress, error) {
	record, err := s.store.Get(ctx, founderID)
	if errors.Is(err, ErrSessionNotFound) {
		record = NewDraftRecord(founderID)
		if err := s.store.Put(ctx, record); err != nil {
			return nil, err
		}
		s.logger.Info("Onboarding session started",
			zap.String("founder_id", founderID),
			zap.String("session_id", record.SessionID.String()))
	} else if err != nil {
		return nil, err
	}
	return s.progressOf(record), nil
}

// Progress returns the wizard state
func (s *Service) Progress(ctx context.Context, founderID string) (*Progress, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	return s.progressOf(record), nil
}

// Draft returns a snapshot of the accumulated draft data
func (s *Service) Draft(ctx context.Context, founderID string) (Draft, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	return record.Draft.Snapshot(), nil
}

// SetFields records values for one step and returns the step's fresh
// validation result. Writes are last-write-wins and never blocked by
// validation; navigation is where errors gate.
func (s *Service) SetFields(ctx context.Context, founderID string, step StepID, fields Fields) (ValidationResult, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	ctrl := s.controllerFor(record)
	if _, _, ok := ctrl.StepByID(step); !ok {
		return nil, ErrUnknownStep
	}

	for field, value := range fields {
		record.Draft.SetField(step, field, value)
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	return Validate(step, record.Draft.Step(step)), nil
}

// Next advances the wizard one step
func (s *Service) Next(ctx context.Context, founderID string) (*Progress, error) {
	return s.navigate(ctx, founderID, func(ctrl *Controller, d Draft) error {
		return ctrl.GoNext(d)
	})
}

// Back returns to the previous step
func (s *Service) Back(ctx context.Context, founderID string) (*Progress, error) {
	return s.navigate(ctx, founderID, func(ctrl *Controller, d Draft) error {
		return ctrl.GoBack()
	})
}

// GoTo jumps to a step if all its predecessors are complete
func (s *Service) GoTo(ctx context.Context, founderID string, step StepID) (*Progress, error) {
	return s.navigate(ctx, founderID, func(ctrl *Controller, d Draft) error {
		return ctrl.GoTo(step, d)
	})
}

func (s *Service) navigate(ctx context.Context, founderID string, move func(*Controller, Draft) error) (*Progress, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	ctrl := s.controllerFor(record)
	if err := move(ctrl, record.Draft); err != nil {
		return nil, err
	}

	record.StepIndex = ctrl.Index()
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	return s.progressOf(record), nil
}

// StageDocument screens an offered file and stages it when accepted. The
// returned candidate carries the rejection reason otherwise; rejected files
// are never staged and never transferred.
func (s *Service) StageDocument(ctx context.Context, founderID, name, declaredType string, size int64, content []byte) (*uploads.Candidate, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	sessionKey := record.SessionID.String()
	cand := s.uploads.Screen(sessionKey, name, declaredType, size)
	if !cand.Accepted {
		s.logger.Info("Document rejected",
			zap.String("founder_id", founderID),
			zap.String("name", name),
			zap.String("reason", string(cand.Reason)))
		return &cand, nil
	}

	if _, err := s.uploads.Stage(sessionKey, cand, content); err != nil {
		return nil, err
	}

	refs := append(DocumentRefs(record.Draft), cand.ID.String())
	SetDocumentRefs(record.Draft, refs)
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	return &cand, nil
}

// RemoveDocument discards a staged document
func (s *Service) RemoveDocument(ctx context.Context, founderID string, fileID uuid.UUID) error {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return err
	}
	if record.Status == StatusSubmitted {
		return ErrAlreadySubmitted
	}

	s.uploads.Remove(record.SessionID.String(), fileID)

	refs := DocumentRefs(record.Draft)
	kept := refs[:0]
	for _, ref := range refs {
		if ref != fileID.String() {
			kept = append(kept, ref)
		}
	}
	SetDocumentRefs(record.Draft, kept)
	return s.store.Put(ctx, record)
}

// Documents lists the staged files for a founder's session
func (s *Service) Documents(ctx context.Context, founderID string) ([]*uploads.StagedFile, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}
	return s.uploads.List(record.SessionID.String()), nil
}

// Submit assembles the draft and runs the orchestrated backend sequence.
// Partial failures come back in the result with resume state persisted; a
// session reset during an in-flight submission discards the result rather
// than applying it.
func (s *Service) Submit(ctx context.Context, sess auth.Session) (*submission.Result, error) {
	record, err := s.store.Get(ctx, sess.FounderID)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	ctrl := s.controllerFor(record)
	if incomplete := ctrl.IncompleteSteps(record.Draft); len(incomplete) > 0 {
		return nil, &IncompleteDraftError{Steps: incomplete}
	}

	payload, err := s.buildPayload(record)
	if err != nil {
		return nil, err
	}
	generation := record.Generation

	result, err := s.orchestrator.Submit(ctx, sess, payload, record.Submission)
	if err != nil {
		return nil, err
	}

	fresh, err := s.store.Get(ctx, sess.FounderID)
	if err != nil || fresh.Generation != generation {
		// Session was reset or removed while the submission was in flight
		s.logger.Warn("Discarding submission result for stale session",
			zap.String("founder_id", sess.FounderID))
		return result, nil
	}

	fresh.Submission = record.Submission
	if result.Submitted {
		fresh.Status = StatusSubmitted
		fresh.Draft = NewDraft()
		s.uploads.Clear(fresh.SessionID.String())
		s.logger.Info("Onboarding submitted",
			zap.String("founder_id", sess.FounderID),
			zap.String("company_id", result.CompanyID))
	}
	if err := s.store.Put(ctx, fresh); err != nil {
		return nil, err
	}
	return result, nil
}

// Reset clears all accumulated data and starts the wizard over
func (s *Service) Reset(ctx context.Context, founderID string) (*Progress, error) {
	record, err := s.store.Get(ctx, founderID)
	if err != nil {
		return nil, err
	}

	s.uploads.Clear(record.SessionID.String())
	record.Draft = NewDraft()
	record.StepIndex = 0
	record.Status = StatusInProgress
	record.Submission = submission.NewProgress()
	record.Generation++

	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("Onboarding session reset", zap.String("founder_id", founderID))
	return s.progressOf(record), nil
}

// buildPayload assembles the submission from the draft and the staged files.
// Every document ref must resolve to staged content or to a file already
// uploaded in a previous attempt; refs whose content vanished (a restart
// wiped the staging area) fail the submission instead of being dropped.
func (s *Service) buildPayload(record *DraftRecord) (submission.Payload, error) {
	company := record.Draft.Step(StepCompanyInfo)
	raise := record.Draft.Step(StepFundraising)
	kyc := record.Draft.Step(StepFounderKYC)
	fin := record.Draft.Step(StepFinancials)

	payload := submission.Payload{
		Company: marketplace.CompanyProfile{
			Name:              str(company["company_name"]),
			IncorporationDate: str(company["incorporation_date"]),
			Sector:            str(company["sector"]),
			Country:           str(company["country"]),
			Website:           str(company["website"]),
			Description:       str(company["description"]),
			RaiseAmount:       num(raise["raise_amount"]),
			EquityOfferedPct:  num(raise["equity_offered_pct"]),
			PreMoneyValuation: num(raise["pre_money_valuation"]),
			Instrument:        str(raise["instrument"]),
		},
		KYC: marketplace.KYCSubmission{
			LegalName:        str(kyc["legal_name"]),
			DateOfBirth:      str(kyc["date_of_birth"]),
			Nationality:      str(kyc["nationality"]),
			IDDocumentType:   str(kyc["id_document_type"]),
			IDDocumentNumber: str(kyc["id_document_number"]),
		},
		Financials: marketplace.FinancialLink{
			Provider:        str(fin["provider"]),
			AccountRef:      str(fin["account_ref"]),
			InstitutionName: str(fin["institution_name"]),
			AnnualRevenue:   num(fin["annual_revenue"]),
		},
	}

	staged := make(map[string]*uploads.StagedFile)
	for _, f := range s.uploads.List(record.SessionID.String()) {
		staged[f.ID.String()] = f
	}
	var stale []string
	for _, ref := range DocumentRefs(record.Draft) {
		if f, ok := staged[ref]; ok {
			payload.Documents = append(payload.Documents, submission.Document{
				FileID:      f.ID,
				Name:        f.Name,
				ContentType: f.DeclaredType,
				Content:     f.Content,
			})
			continue
		}
		if _, done := record.Submission.UploadedFiles[ref]; done {
			// Already persisted remotely; keep it in the manifest so the
			// result still lists it, content no longer needed.
			id, err := uuid.Parse(ref)
			if err != nil {
				continue
			}
			payload.Documents = append(payload.Documents, submission.Document{FileID: id})
			continue
		}
		stale = append(stale, ref)
	}
	if len(stale) > 0 {
		return submission.Payload{}, &StaleDocumentsError{Refs: stale}
	}
	return payload, nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) float64 {
	n, _ := asNumber(v)
	return n
}

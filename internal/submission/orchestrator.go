// Package submission sequences the backend calls that turn an accumulated
// onboarding draft into remote state: company, KYC, financial link, then
// document uploads. Earlier successes are never repeated on retry.
package submission

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Gateway is the slice of the marketplace client the orchestrator needs
type Gateway interface {
	CreateCompany(ctx context.Context, sess auth.Session, profile marketplace.CompanyProfile, idempotencyKey string) (*marketplace.Company, error)
	VerifyKYC(ctx context.Context, sess auth.Session, sub marketplace.KYCSubmission) error
	LinkFinancials(ctx context.Context, sess auth.Session, link marketplace.FinancialLink) error
	UploadFile(ctx context.Context, sess auth.Session, upload marketplace.FileUpload) (*marketplace.FileRecord, error)
}

// Orchestrator drives the phased submission
type Orchestrator struct {
	gateway              Gateway
	logger               *zap.Logger
	maxConcurrentUploads int
}

// NewOrchestrator creates a new submission orchestrator
func NewOrchestrator(gateway Gateway, logger *zap.Logger, maxConcurrentUploads int) *Orchestrator {
	if maxConcurrentUploads <= 0 {
		maxConcurrentUploads = 5
	}
	return &Orchestrator{
		gateway:              gateway,
		logger:               logger,
		maxConcurrentUploads: maxConcurrentUploads,
	}
}

// Submit runs the phases in order, mutating prog as phases complete so the
// caller can persist resume state. Phase failures are reported in the
// Result; the returned error is non-nil only when ctx was canceled.
func (o *Orchestrator) Submit(ctx context.Context, sess auth.Session, payload Payload, prog *Progress) (*Result, error) {
	prog.ensure()
	if prog.IdempotencyKey == "" {
		prog.IdempotencyKey = uuid.NewString()
	}

	result := &Result{}

	for _, phase := range PhaseOrder {
		if prog.Completed[phase] {
			result.SucceededPhases = append(result.SucceededPhases, phase)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		switch phase {
		case PhaseCompany:
			err = o.runCompany(ctx, sess, payload, prog)
		case PhaseKYC:
			err = o.runKYC(ctx, sess, payload, prog)
		case PhaseFinancials:
			err = o.runFinancials(ctx, sess, payload, prog)
		case PhaseDocuments:
			result.Files, err = o.runDocuments(ctx, sess, payload, prog)
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("Submission phase failed",
				zap.String("phase", string(phase)),
				zap.Error(err))
			result.CompanyID = prog.CompanyID
			result.FailedPhase = phase
			result.Failure = err
			result.FailureMessage = err.Error()
			return result, nil
		}

		prog.Completed[phase] = true
		result.SucceededPhases = append(result.SucceededPhases, phase)
	}

	result.Submitted = true
	result.CompanyID = prog.CompanyID
	o.logger.Info("Onboarding submission completed",
		zap.String("founder_id", sess.FounderID),
		zap.String("company_id", prog.CompanyID))
	return result, nil
}

func (o *Orchestrator) runCompany(ctx context.Context, sess auth.Session, payload Payload, prog *Progress) error {
	company, err := o.gateway.CreateCompany(ctx, sess, payload.Company, prog.IdempotencyKey)
	if err != nil {
		return err
	}
	prog.CompanyID = company.ID
	return nil
}

func (o *Orchestrator) runKYC(ctx context.Context, sess auth.Session, payload Payload, prog *Progress) error {
	sub := payload.KYC
	sub.CompanyID = prog.CompanyID
	return o.gateway.VerifyKYC(ctx, sess, sub)
}

func (o *Orchestrator) runFinancials(ctx context.Context, sess auth.Session, payload Payload, prog *Progress) error {
	link := payload.Financials
	link.CompanyID = prog.CompanyID
	return o.gateway.LinkFinancials(ctx, sess, link)
}

// runDocuments uploads sibling files concurrently under a cap. One file's
// failure does not abort the others; the phase fails if any file remains
// pending, and only those files are retried next time.
func (o *Orchestrator) runDocuments(ctx context.Context, sess auth.Session, payload Payload, prog *Progress) ([]FileResult, error) {
	results := make([]FileResult, 0, len(payload.Documents))
	var mu sync.Mutex
	var firstErr error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrentUploads)

	for _, doc := range payload.Documents {
		if remoteID, ok := prog.UploadedFiles[doc.FileID.String()]; ok {
			results = append(results, FileResult{
				FileID:   doc.FileID,
				Name:     doc.Name,
				Uploaded: true,
				RemoteID: remoteID,
			})
			continue
		}

		doc := doc
		g.Go(func() error {
			record, err := o.gateway.UploadFile(gctx, sess, marketplace.FileUpload{
				CompanyID:   prog.CompanyID,
				Name:        doc.Name,
				ContentType: doc.ContentType,
				Content:     doc.Content,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				results = append(results, FileResult{
					FileID: doc.FileID,
					Name:   doc.Name,
					Error:  err.Error(),
				})
				// Sibling uploads keep going
				return nil
			}
			prog.UploadedFiles[doc.FileID.String()] = record.ID
			results = append(results, FileResult{
				FileID:   doc.FileID,
				Name:     doc.Name,
				Uploaded: true,
				RemoteID: record.ID,
			})
			return nil
		})
	}

	g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, firstErr
}

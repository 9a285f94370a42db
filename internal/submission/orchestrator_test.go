package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// MockGateway is a mock implementation of the Gateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCompany(ctx context.Context, sess auth.Session, profile marketplace.CompanyProfile, idempotencyKey string) (*marketplace.Company, error) {
	args := m.Called(ctx, sess, profile, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Company), args.Error(1)
}

func (m *MockGateway) VerifyKYC(ctx context.Context, sess auth.Session, sub marketplace.KYCSubmission) error {
	args := m.Called(ctx, sess, sub)
	return args.Error(0)
}

func (m *MockGateway) LinkFinancials(ctx context.Context, sess auth.Session, link marketplace.FinancialLink) error {
	args := m.Called(ctx, sess, link)
	return args.Error(0)
}

func (m *MockGateway) UploadFile(ctx context.Context, sess auth.Session, upload marketplace.FileUpload) (*marketplace.FileRecord, error) {
	args := m.Called(ctx, sess, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.FileRecord), args.Error(1)
}

var testSession = auth.Session{FounderID: "founder-1", Token: "tok"}

func testPayload() Payload {
	return Payload{
		Company:    marketplace.CompanyProfile{Name: "Acme", IncorporationDate: "2021-04-01"},
		KYC:        marketplace.KYCSubmission{LegalName: "Ada Founder"},
		Financials: marketplace.FinancialLink{Provider: "plaid"},
	}
}

func TestSubmitHappyPath(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateCompany", mock.Anything, testSession, mock.Anything, mock.Anything).
		Return(&marketplace.Company{ID: "cmp-1"}, nil)
	gw.On("VerifyKYC", mock.Anything, testSession, mock.MatchedBy(func(sub marketplace.KYCSubmission) bool {
		return sub.CompanyID == "cmp-1"
	})).Return(nil)
	gw.On("LinkFinancials", mock.Anything, testSession, mock.MatchedBy(func(link marketplace.FinancialLink) bool {
		return link.CompanyID == "cmp-1"
	})).Return(nil)

	o := NewOrchestrator(gw, zap.NewNop(), 0)
	prog := NewProgress()

	result, err := o.Submit(context.Background(), testSession, testPayload(), prog)

	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, "cmp-1", result.CompanyID)
	assert.Equal(t, PhaseOrder, result.SucceededPhases)
	gw.AssertExpectations(t)
}

func TestCompanyFailureStopsSequence(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateCompany", mock.Anything, testSession, mock.Anything, mock.Anything).
		Return(nil, &marketplace.APIError{Status: 500, Message: "boom"})

	o := NewOrchestrator(gw, zap.NewNop(), 0)
	prog := NewProgress()

	result, err := o.Submit(context.Background(), testSession, testPayload(), prog)

	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.Equal(t, PhaseCompany, result.FailedPhase)
	assert.Empty(t, result.SucceededPhases)
	gw.AssertNotCalled(t, "VerifyKYC", mock.Anything, mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "LinkFinancials", mock.Anything, mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetryAfterPartialFailureSkipsCompany(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateCompany", mock.Anything, testSession, mock.Anything, mock.Anything).
		Return(&marketplace.Company{ID: "cmp-1"}, nil).Once()
	gw.On("VerifyKYC", mock.Anything, testSession, mock.Anything).
		Return(errors.New("provider error")).Once()

	o := NewOrchestrator(gw, zap.NewNop(), 0)
	prog := NewProgress()

	result, err := o.Submit(context.Background(), testSession, testPayload(), prog)
	require.NoError(t, err)
	assert.Equal(t, PhaseKYC, result.FailedPhase)
	assert.Equal(t, []Phase{PhaseCompany}, result.SucceededPhases)
	assert.Equal(t, "cmp-1", prog.CompanyID)
	firstKey := prog.IdempotencyKey

	// Backend recovers; the retry must not re-create the company.
	gw.On("VerifyKYC", mock.Anything, testSession, mock.Anything).Return(nil).Once()
	gw.On("LinkFinancials", mock.Anything, testSession, mock.Anything).Return(nil).Once()

	result, err = o.Submit(context.Background(), testSession, testPayload(), prog)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, firstKey, prog.IdempotencyKey)
	gw.AssertNumberOfCalls(t, "CreateCompany", 1)
}

func TestDocumentFailureIsPerFile(t *testing.T) {
	goodID, badID := uuid.New(), uuid.New()
	payload := testPayload()
	payload.Documents = []Document{
		{FileID: goodID, Name: "a-deck.pdf", ContentType: "application/pdf", Content: []byte("a")},
		{FileID: badID, Name: "b-financials.pdf", ContentType: "application/pdf", Content: []byte("b")},
	}

	gw := new(MockGateway)
	gw.On("CreateCompany", mock.Anything, testSession, mock.Anything, mock.Anything).
		Return(&marketplace.Company{ID: "cmp-1"}, nil)
	gw.On("VerifyKYC", mock.Anything, testSession, mock.Anything).Return(nil)
	gw.On("LinkFinancials", mock.Anything, testSession, mock.Anything).Return(nil)
	gw.On("UploadFile", mock.Anything, testSession, mock.MatchedBy(func(u marketplace.FileUpload) bool {
		return u.Name == "a-deck.pdf"
	})).Return(&marketplace.FileRecord{ID: "file-a"}, nil)
	gw.On("UploadFile", mock.Anything, testSession, mock.MatchedBy(func(u marketplace.FileUpload) bool {
		return u.Name == "b-financials.pdf"
	})).Return(nil, &marketplace.APIError{Status: 500, Message: "storage error"}).Once()

	o := NewOrchestrator(gw, zap.NewNop(), 2)
	prog := NewProgress()

	result, err := o.Submit(context.Background(), testSession, payload, prog)
	require.NoError(t, err)
	assert.False(t, result.Submitted)
	assert.Equal(t, PhaseDocuments, result.FailedPhase)
	require.Len(t, result.Files, 2)
	assert.True(t, result.Files[0].Uploaded)
	assert.False(t, result.Files[1].Uploaded)
	assert.NotEmpty(t, result.Files[1].Error)

	// Retry re-sends only the failed file.
	gw.On("UploadFile", mock.Anything, testSession, mock.MatchedBy(func(u marketplace.FileUpload) bool {
		return u.Name == "b-financials.pdf"
	})).Return(&marketplace.FileRecord{ID: "file-b"}, nil).Once()

	result, err = o.Submit(context.Background(), testSession, payload, prog)
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	gw.AssertNumberOfCalls(t, "UploadFile", 3)
}

func TestSubmitCanceledContext(t *testing.T) {
	gw := new(MockGateway)
	o := NewOrchestrator(gw, zap.NewNop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Submit(ctx, testSession, testPayload(), NewProgress())
	assert.ErrorIs(t, err, context.Canceled)
	gw.AssertNotCalled(t, "CreateCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

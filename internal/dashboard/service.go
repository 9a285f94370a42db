// Package dashboard exposes the post-onboarding read surface: the
// investability score, uploaded documents and in-app notifications. All of
// it is computed by the marketplace backend; this layer only forwards.
package dashboard

import (
	"context"

	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Gateway is the slice of the marketplace client the dashboard needs
type Gateway interface {
	GetScore(ctx context.Context, sess auth.Session) (*marketplace.Score, error)
	ListFiles(ctx context.Context, sess auth.Session) ([]marketplace.FileRecord, error)
	ListNotifications(ctx context.Context, sess auth.Session) ([]marketplace.Notification, error)
}

// Service proxies dashboard reads to the backend
type Service struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewService creates a new dashboard service
func NewService(gateway Gateway, logger *zap.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Score fetches the backend-computed investability score
func (s *Service) Score(ctx context.Context, sess auth.Session) (*marketplace.Score, error) {
	score, err := s.gateway.GetScore(ctx, sess)
	if err != nil {
		return nil, err
	}
	return score, nil
}

// Files lists the founder's uploaded documents
func (s *Service) Files(ctx context.Context, sess auth.Session) ([]marketplace.FileRecord, error) {
	return s.gateway.ListFiles(ctx, sess)
}

// Notifications lists the founder's in-app notifications
func (s *Service) Notifications(ctx context.Context, sess auth.Session) ([]marketplace.Notification, error) {
	return s.gateway.ListNotifications(ctx, sess)
}

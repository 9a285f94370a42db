// Package marketplace is the HTTP client for the capital-marketplace
// backend. All business logic (scoring, KYC, financial linking, storage)
// lives behind these endpoints; this service only forwards.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
)

// Client calls the marketplace backend with bearer-token auth and
// retry-with-backoff on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

// ClientConfig configures the backend client
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a new marketplace backend client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		logger:     logger,
	}
}

// CreateCompany creates or updates the company profile. The idempotency key
// lets the backend deduplicate retried creations after a partial failure.
func (c *Client) CreateCompany(ctx context.Context, sess auth.Session, profile CompanyProfile, idempotencyKey string) (*Company, error) {
	var company Company
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := c.doJSON(ctx, sess, http.MethodPost, "/api/company", profile, &company, headers); err != nil {
		return nil, err
	}
	return &company, nil
}

// VerifyKYC submits founder KYC data for verification
func (c *Client) VerifyKYC(ctx context.Context, sess auth.Session, sub KYCSubmission) error {
	return c.doJSON(ctx, sess, http.MethodPost, "/api/kyc/verify", sub, nil, nil)
}

// LinkFinancials links the company's financial data source
func (c *Client) LinkFinancials(ctx context.Context, sess auth.Session, link FinancialLink) error {
	return c.doJSON(ctx, sess, http.MethodPost, "/api/financials/link", link, nil, nil)
}

// UploadFile forwards one document to the backend as multipart form data
func (c *Client) UploadFile(ctx context.Context, sess auth.Session, upload FileUpload) (*FileRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.retry.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		body, contentType, err := multipartBody(upload)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+sess.Token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrUnreachable, err)
			continue
		}

		record, err := decodeResponse[FileRecord](resp)
		if err != nil {
			if apiErr, ok := AsAPIError(err); ok && c.retry.retryable(apiErr.Status) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return record, nil
	}
	return nil, lastErr
}

// ListFiles returns the documents already uploaded for this founder
func (c *Client) ListFiles(ctx context.Context, sess auth.Session) ([]FileRecord, error) {
	var files []FileRecord
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/files", nil, &files, nil); err != nil {
		return nil, err
	}
	return files, nil
}

// GetScore fetches the backend-computed investability score
func (c *Client) GetScore(ctx context.Context, sess auth.Session) (*Score, error) {
	var score Score
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/score", nil, &score, nil); err != nil {
		return nil, err
	}
	return &score, nil
}

// ListNotifications fetches the founder's in-app notifications
func (c *Client) ListNotifications(ctx context.Context, sess auth.Session) ([]Notification, error) {
	var notes []Notification
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/notifications", nil, &notes, nil); err != nil {
		return nil, err
	}
	return notes, nil
}

// doJSON executes a JSON request with retry on transient failures
func (c *Client) doJSON(ctx context.Context, sess auth.Session, method, path string, body, out interface{}, headers map[string]string) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying backend call",
				zap.String("path", path),
				zap.Int("attempt", attempt))
			if err := sleepCtx(ctx, c.retry.backoff(attempt-1)); err != nil {
				return err
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrUnreachable, err)
			continue
		}

		err = decodeInto(resp, out)
		if err == nil {
			return nil
		}
		if apiErr, ok := AsAPIError(err); ok && c.retry.retryable(apiErr.Status) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func decodeResponse[T any](resp *http.Response) (*T, error) {
	var out T
	if err := decodeInto(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeInto(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func multipartBody(upload FileUpload) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if upload.CompanyID != "" {
		if err := w.WriteField("company_id", upload.CompanyID); err != nil {
			return nil, "", err
		}
	}
	if upload.ContentType != "" {
		if err := w.WriteField("content_type", upload.ContentType); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", upload.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

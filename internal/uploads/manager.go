// Package uploads screens documents client-side before any transfer is
// attempted. Rejected files never reach the network; accepted files are
// staged in memory until the submission orchestrator forwards them.
package uploads

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RejectReason classifies why a file was refused
type RejectReason string

const (
	ReasonFileTooLarge    RejectReason = "file-too-large"
	ReasonUnsupportedType RejectReason = "unsupported-type"
	ReasonTooManyFiles    RejectReason = "too-many-files"
)

// Limits bounds what a founder may stage for the documents step
type Limits struct {
	MaxFileBytes  int64
	MaxFiles      int
	AcceptedTypes []string
}

// DefaultLimits matches the product defaults: 10MB per file, 5 files,
// PDF and image documents only.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:  10 << 20,
		MaxFiles:      5,
		AcceptedTypes: []string{"application/pdf", "image/png", "image/jpeg"},
	}
}

// Candidate is the screening outcome for one offered file
type Candidate struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	DeclaredType string       `json:"declared_type"`
	Size         int64        `json:"size"`
	Accepted     bool         `json:"accepted"`
	Reason       RejectReason `json:"reason,omitempty"`
	ScreenedAt   time.Time    `json:"screened_at"`
}

// StagedFile is an accepted candidate plus its content, held until submission
type StagedFile struct {
	Candidate
	Content []byte `json:"-"`
}

// Manager screens and stages files per onboarding session
type Manager struct {
	limits Limits
	mu     sync.RWMutex
	staged map[string][]*StagedFile
}

// NewManager creates a new upload manager
func NewManager(limits Limits) *Manager {
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = DefaultLimits().MaxFileBytes
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = DefaultLimits().MaxFiles
	}
	if len(limits.AcceptedTypes) == 0 {
		limits.AcceptedTypes = DefaultLimits().AcceptedTypes
	}
	return &Manager{
		limits: limits,
		staged: make(map[string][]*StagedFile),
	}
}

// Limits returns the configured bounds
func (m *Manager) Limits() Limits {
	return m.limits
}

// Screen validates one offered file against type, size and count limits.
// It only classifies; nothing is staged and no transfer is initiated.
func (m *Manager) Screen(sessionID, name, declaredType string, size int64) Candidate {
	cand := Candidate{
		ID:           uuid.New(),
		Name:         name,
		DeclaredType: normalizeType(name, declaredType),
		Size:         size,
		ScreenedAt:   time.Now(),
	}

	switch {
	case !m.typeAccepted(cand.DeclaredType):
		cand.Reason = ReasonUnsupportedType
	case size > m.limits.MaxFileBytes:
		cand.Reason = ReasonFileTooLarge
	case m.stagedCount(sessionID) >= m.limits.MaxFiles:
		cand.Reason = ReasonTooManyFiles
	default:
		cand.Accepted = true
	}
	return cand
}

// Stage holds an accepted candidate's content for later transfer
func (m *Manager) Stage(sessionID string, cand Candidate, content []byte) (*StagedFile, error) {
	if !cand.Accepted {
		return nil, fmt.Errorf("cannot stage rejected file %q (%s)", cand.Name, cand.Reason)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.staged[sessionID]) >= m.limits.MaxFiles {
		return nil, fmt.Errorf("cannot stage %q: %s", cand.Name, ReasonTooManyFiles)
	}

	file := &StagedFile{Candidate: cand, Content: content}
	m.staged[sessionID] = append(m.staged[sessionID], file)
	return file, nil
}

// List returns the staged files for a session in staging order
func (m *Manager) List(sessionID string) []*StagedFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*StagedFile, len(m.staged[sessionID]))
	copy(out, m.staged[sessionID])
	return out
}

// Remove discards one staged file, freeing a slot
func (m *Manager) Remove(sessionID string, fileID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := m.staged[sessionID]
	for i, f := range files {
		if f.ID == fileID {
			m.staged[sessionID] = append(files[:i], files[i+1:]...)
			return true
		}
	}
	return false
}

// Clear discards everything staged for a session
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staged, sessionID)
}

func (m *Manager) stagedCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.staged[sessionID])
}

func (m *Manager) typeAccepted(contentType string) bool {
	for _, t := range m.limits.AcceptedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// normalizeType falls back to the file extension when the browser did not
// declare a usable content type.
func normalizeType(name, declared string) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return declared
}

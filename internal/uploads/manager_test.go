package uploads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenAcceptsSmallPDF(t *testing.T) {
	m := NewManager(DefaultLimits())

	cand := m.Screen("sess", "deck.pdf", "application/pdf", 2<<20)

	assert.True(t, cand.Accepted)
	assert.Empty(t, cand.Reason)
}

func TestScreenRejectsOversizedPDF(t *testing.T) {
	m := NewManager(DefaultLimits())

	cand := m.Screen("sess", "deck.pdf", "application/pdf", 12<<20)

	assert.False(t, cand.Accepted)
	assert.Equal(t, ReasonFileTooLarge, cand.Reason)
}

func TestScreenRejectsUnsupportedType(t *testing.T) {
	m := NewManager(DefaultLimits())

	cand := m.Screen("sess", "capdoc.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", 1<<20)

	assert.False(t, cand.Accepted)
	assert.Equal(t, ReasonUnsupportedType, cand.Reason)
}

func TestScreenRejectsSixthFile(t *testing.T) {
	m := NewManager(DefaultLimits())

	for i := 0; i < 5; i++ {
		cand := m.Screen("sess", "doc.pdf", "application/pdf", 1024)
		require.True(t, cand.Accepted)
		_, err := m.Stage("sess", cand, []byte("content"))
		require.NoError(t, err)
	}

	cand := m.Screen("sess", "one-too-many.pdf", "application/pdf", 1024)
	assert.False(t, cand.Accepted)
	assert.Equal(t, ReasonTooManyFiles, cand.Reason)
}

func TestStageRejectedFileFails(t *testing.T) {
	m := NewManager(DefaultLimits())
	cand := m.Screen("sess", "big.pdf", "application/pdf", 12<<20)

	_, err := m.Stage("sess", cand, []byte("content"))
	assert.Error(t, err)
	assert.Empty(t, m.List("sess"))
}

func TestRemoveFreesSlot(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFiles = 1
	m := NewManager(limits)

	cand := m.Screen("sess", "doc.pdf", "application/pdf", 1024)
	staged, err := m.Stage("sess", cand, []byte("content"))
	require.NoError(t, err)

	assert.Equal(t, ReasonTooManyFiles, m.Screen("sess", "other.pdf", "application/pdf", 1024).Reason)

	assert.True(t, m.Remove("sess", staged.ID))
	assert.True(t, m.Screen("sess", "other.pdf", "application/pdf", 1024).Accepted)
}

func TestExtensionFallbackWhenTypeUndeclared(t *testing.T) {
	m := NewManager(DefaultLimits())

	cand := m.Screen("sess", "deck.pdf", "application/octet-stream", 1024)
	assert.True(t, cand.Accepted)
	assert.Equal(t, "application/pdf", cand.DeclaredType)
}

func TestSessionsScreenedIndependently(t *testing.T) {
	m := NewManager(DefaultLimits())

	for i := 0; i < 5; i++ {
		cand := m.Screen("a", "doc.pdf", "application/pdf", 1024)
		_, err := m.Stage("a", cand, nil)
		require.NoError(t, err)
	}

	assert.True(t, m.Screen("b", "doc.pdf", "application/pdf", 1024).Accepted)

	m.Clear("a")
	assert.Empty(t, m.List("a"))
}

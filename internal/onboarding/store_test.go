package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftLastWriteWins(t *testing.T) {
	draft := NewDraft()

	draft.SetField(StepCompanyInfo, "company_name", "First")
	draft.SetField(StepCompanyInfo, "company_name", "Second")
	draft.SetField(StepCompanyInfo, "company_name", "Second") // idempotent
	draft.SetField(StepCompanyInfo, "company_name", "Final")
	draft.SetField(StepFundraising, "raise_amount", 100.0)
	draft.SetField(StepFundraising, "raise_amount", 200.0)

	snap := draft.Snapshot()
	v, _ := snap.Field(StepCompanyInfo, "company_name")
	assert.Equal(t, "Final", v)
	v, _ = snap.Field(StepFundraising, "raise_amount")
	assert.Equal(t, 200.0, v)
}

func TestSnapshotIsIndependent(t *testing.T) {
	draft := NewDraft()
	draft.SetField(StepCompanyInfo, "company_name", "Acme")

	snap := draft.Snapshot()
	draft.SetField(StepCompanyInfo, "company_name", "Changed")

	v, _ := snap.Field(StepCompanyInfo, "company_name")
	assert.Equal(t, "Acme", v)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "founder-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	record := NewDraftRecord("founder-1")
	record.Draft.SetField(StepCompanyInfo, "company_name", "Acme")
	require.NoError(t, store.Put(ctx, record))

	loaded, err := store.Get(ctx, "founder-1")
	require.NoError(t, err)
	assert.Equal(t, record.SessionID, loaded.SessionID)
	v, _ := loaded.Draft.Field(StepCompanyInfo, "company_name")
	assert.Equal(t, "Acme", v)

	// Stored record does not alias the caller's draft
	record.Draft.SetField(StepCompanyInfo, "company_name", "Mutated")
	reloaded, err := store.Get(ctx, "founder-1")
	require.NoError(t, err)
	v, _ = reloaded.Draft.Field(StepCompanyInfo, "company_name")
	assert.Equal(t, "Acme", v)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, NewDraftRecord("founder-1")))
	require.NoError(t, store.Delete(ctx, "founder-1"))

	_, err := store.Get(ctx, "founder-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale := NewDraftRecord("stale")
	require.NoError(t, store.Put(ctx, stale))
	store.records["stale"].UpdatedAt = time.Now().Add(-48 * time.Hour)

	require.NoError(t, store.Put(ctx, NewDraftRecord("fresh")))

	removed, err := store.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

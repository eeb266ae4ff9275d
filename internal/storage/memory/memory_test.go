package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grantwatch/harvester/internal/harvest"
)

func TestGrantStoreUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewGrantStore()
	grant := harvest.Grant{ContentHash: "h1", Title: "Грант", CreatedAt: time.Now()}

	require.NoError(t, store.Upsert(context.Background(), grant))
	require.NoError(t, store.Upsert(context.Background(), grant))
	require.Equal(t, 1, store.Len())
}

func TestGrantStoreUpsertRefreshesMutableFields(t *testing.T) {
	t.Parallel()

	store := NewGrantStore()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := harvest.Grant{ContentHash: "h1", Description: "old", CreatedAt: created, UpdatedAt: created}
	require.NoError(t, store.Upsert(context.Background(), first))

	later := created.Add(24 * time.Hour)
	second := harvest.Grant{ContentHash: "h1", Description: "new", CreatedAt: later, UpdatedAt: later}
	require.NoError(t, store.Upsert(context.Background(), second))

	stored, ok := store.Get("h1")
	require.True(t, ok)
	require.Equal(t, "new", stored.Description)
	require.Equal(t, created, stored.CreatedAt)
	require.Equal(t, later, stored.UpdatedAt)
	require.Equal(t, 1, store.Len())
}

func TestSourceStoreClaimSemantics(t *testing.T) {
	t.Parallel()

	store := NewSourceStore()
	store.Add(harvest.Source{ID: "src-1", URL: "https://example.org"})

	claimed, err := store.MarkProcessing(context.Background(), "src-1")
	require.NoError(t, err)
	require.True(t, claimed)

	// Second claim loses.
	claimed, err = store.MarkProcessing(context.Background(), "src-1")
	require.NoError(t, err)
	require.False(t, claimed)

	// A processing source is not eligible.
	eligible, err := store.ListEligible(context.Background())
	require.NoError(t, err)
	require.Empty(t, eligible)

	require.NoError(t, store.MarkSuccess(context.Background(), "src-1", time.Now()))
	eligible, err = store.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, harvest.SourceStatusSuccess, eligible[0].Status)
}

func TestSourceStoreMarkError(t *testing.T) {
	t.Parallel()

	store := NewSourceStore()
	store.Add(harvest.Source{ID: "src-1", URL: "https://example.org"})

	_, err := store.MarkProcessing(context.Background(), "src-1")
	require.NoError(t, err)
	require.NoError(t, store.MarkError(context.Background(), "src-1", "boom"))

	src, err := store.GetSource(context.Background(), "src-1")
	require.NoError(t, err)
	require.Equal(t, harvest.SourceStatusError, src.Status)
	require.Equal(t, "boom", src.LastError)
}

func TestBlobStoreRoundtrip(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "snapshots/src-1/page.html", "text/html", strings.NewReader("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, "memory://snapshots/src-1/page.html", uri)

	data, ok := store.Get("snapshots/src-1/page.html")
	require.True(t, ok)
	require.Equal(t, "<html></html>", string(data))
}

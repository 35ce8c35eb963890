//go:build integration

package article

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soren0/counsel/internal/testutil"
)

func setupIntegrationStore(t *testing.T) (*Store, func()) {
	t.Helper()
	tdb, cleanup := testutil.SetupTestDB(t)
	return NewStore(tdb.Pool, testutil.DiscardLogger()), cleanup
}

func TestStoreCreateGetDelete(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	art := &Article{
		Category:  "guides",
		TitleZH:   "預約流程",
		TitleEN:   "Booking flow",
		SummaryEN: "How booking works.",
		ContentEN: []Block{
			{Type: "paragraph", Content: "Step one."},
			{Type: "paragraph", Content: "Step two."},
		},
		Author: "staff",
	}

	require.NoError(t, store.Create(ctx, art))
	require.NotEmpty(t, art.ID)
	assert.Equal(t, StatusPublished, art.Status)
	assert.False(t, art.PublishedAt.IsZero())

	got, err := store.Get(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, "預約流程", got.TitleZH)
	require.Len(t, got.ContentEN, 2)
	assert.Equal(t, "Step one.", got.ContentEN[0].Content)
	assert.Equal(t, "Step one. Step two.", got.PlainText())

	got.Status = StatusArchived
	got.TitleEN = "Booking flow v2"
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, updated.Status)
	assert.Equal(t, "Booking flow v2", updated.TitleEN)

	require.NoError(t, store.Delete(ctx, art.ID))
	_, err = store.Get(ctx, art.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFindCandidatesPublishedOnly(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []*Article{
		{TitleEN: "Booking guide", Status: StatusPublished, PublishedAt: older},
		{TitleEN: "Booking update", Status: StatusPublished, PublishedAt: newer},
		{TitleEN: "Booking draft", Status: StatusDraft, PublishedAt: newer},
		{TitleEN: "Unrelated", Status: StatusPublished, PublishedAt: newer},
	}
	for _, a := range seed {
		require.NoError(t, store.Create(ctx, a))
	}

	t.Run("matches tokens newest first", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "booking")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Booking update", got[0].TitleEN)
		assert.Equal(t, "Booking guide", got[1].TitleEN)
	})

	t.Run("drafts never surface", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "draft")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("blank query returns all published", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestStoreList(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	seed := []*Article{
		{TitleEN: "one", Category: "guides", Status: StatusPublished},
		{TitleEN: "two", Category: "guides", Status: StatusDraft},
		{TitleEN: "three", Category: "news", Status: StatusPublished},
	}
	for _, a := range seed {
		require.NoError(t, store.Create(ctx, a))
	}

	got, total, err := store.List(ctx, "guides", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)

	got, total, err = store.List(ctx, "", StatusPublished, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)

	got, total, err = store.List(ctx, "guides", StatusDraft, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].TitleEN)
}

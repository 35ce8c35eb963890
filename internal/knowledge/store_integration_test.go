//go:build integration

package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soren0/counsel/internal/testutil"
)

func setupIntegrationStore(t *testing.T) (*Store, func()) {
	t.Helper()
	tdb, cleanup := testutil.SetupTestDB(t)
	return NewStore(tdb.Pool, testutil.DiscardLogger()), cleanup
}

func TestStoreCRUD(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	entry := &Entry{
		Question: "How do I book a consultation?",
		Answer:   "Use the booking form on our site.",
		Keywords: []string{"booking", "consultation"},
		Category: "booking",
		Priority: 100,
		IsActive: true,
		Language: "en",
	}

	require.NoError(t, store.Create(ctx, entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Question, got.Question)
	assert.Equal(t, entry.Keywords, got.Keywords)
	assert.Equal(t, 0, got.UsageCount)
	assert.Nil(t, got.LastUsedAt)

	got.Answer = "Updated answer."
	got.Priority = 200
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated answer.", updated.Answer)
	assert.Equal(t, 200, updated.Priority)

	require.NoError(t, store.Delete(ctx, entry.ID))
	_, err = store.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreGetNotFound(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFindCandidates(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	seed := []*Entry{
		{Question: "How do I book?", Answer: "Online.", Keywords: []string{"booking"}, Priority: 50, IsActive: true},
		{Question: "Opening hours", Answer: "9 to 5.", Keywords: []string{"hours"}, Priority: 10, IsActive: true},
		{Question: "Booking deposit", Answer: "Required.", Keywords: []string{}, Priority: 90, IsActive: true},
		{Question: "Inactive booking entry", Answer: "Hidden.", Keywords: []string{"booking"}, Priority: 99, IsActive: false},
	}
	for _, e := range seed {
		require.NoError(t, store.Create(ctx, e))
	}

	t.Run("token match over question answer and keywords", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "booking")
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Ordered by priority descending.
		assert.Equal(t, "Booking deposit", got[0].Question)
		assert.Equal(t, "How do I book?", got[1].Question)
	})

	t.Run("inactive entries excluded", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "booking")
		require.NoError(t, err)
		for _, e := range got {
			assert.True(t, e.IsActive)
		}
	})

	t.Run("blank query returns all active", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "   ")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, "zzzzzz")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStoreIncrementUsage(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	entry := &Entry{Question: "q", Answer: "a", IsActive: true}
	require.NoError(t, store.Create(ctx, entry))

	require.NoError(t, store.IncrementUsage(ctx, entry.ID))
	require.NoError(t, store.IncrementUsage(ctx, entry.ID))

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)
	require.NotNil(t, got.LastUsedAt)

	assert.ErrorIs(t, store.IncrementUsage(ctx, "missing"), ErrNotFound)
}

func TestStoreIncrementUsageConcurrent(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	entry := &Entry{Question: "q", Answer: "a", IsActive: true}
	require.NoError(t, store.Create(ctx, entry))

	// Concurrent increments of the same entry must never lose an update.
	const workers = 10
	errs := make(chan error, workers)
	for range workers {
		go func() {
			errs <- store.IncrementUsage(ctx, entry.ID)
		}()
	}
	for range workers {
		require.NoError(t, <-errs)
	}

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, got.UsageCount)
}

func TestStoreList(t *testing.T) {
	store, cleanup := setupIntegrationStore(t)
	defer cleanup()
	ctx := context.Background()

	active := true
	inactive := false

	seed := []*Entry{
		{Question: "booking one", Answer: "a", Category: "booking", Priority: 3, IsActive: true},
		{Question: "booking two", Answer: "a", Category: "booking", Priority: 2, IsActive: true},
		{Question: "pricing", Answer: "a", Category: "pricing", Priority: 1, IsActive: false},
	}
	for _, e := range seed {
		require.NoError(t, store.Create(ctx, e))
	}

	t.Run("filter by category", func(t *testing.T) {
		got, total, err := store.List(ctx, ListFilter{Category: "booking"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, got, 2)
	})

	t.Run("filter by active", func(t *testing.T) {
		got, total, err := store.List(ctx, ListFilter{Active: &inactive}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, "pricing", got[0].Question)

		_, totalActive, err := store.List(ctx, ListFilter{Active: &active}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, totalActive)
	})

	t.Run("search matches substrings", func(t *testing.T) {
		got, total, err := store.List(ctx, ListFilter{Search: "booking"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, got, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, err := store.List(ctx, ListFilter{}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, got, 1)
	})
}

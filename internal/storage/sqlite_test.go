package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "webwatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestOpen_EmptyPath tests that an empty path is rejected
func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

// TestStore_AddList_RoundTrip tests that an added website is listed exactly once
func TestStore_AddList_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddWebsite(ctx, "telegram:user1", "https://example.com"))

	sites, err := store.ListWebsites(ctx, "telegram:user1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, sites)
}

// TestStore_List_InsertionOrder tests that listing preserves insertion order
func TestStore_List_InsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	for _, url := range urls {
		require.NoError(t, store.AddWebsite(ctx, "owner", url))
	}

	sites, err := store.ListWebsites(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, urls, sites)
}

// TestStore_List_EmptyOwner tests listing for an owner with nothing stored
func TestStore_List_EmptyOwner(t *testing.T) {
	store := openTestStore(t)

	sites, err := store.ListWebsites(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, sites)
}

// TestStore_OwnersIsolated tests that owners do not see each other's sites
func TestStore_OwnersIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddWebsite(ctx, "telegram:user1", "https://a.com"))
	require.NoError(t, store.AddWebsite(ctx, "discord:user1", "https://b.com"))

	sites, err := store.ListWebsites(ctx, "telegram:user1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com"}, sites)
}

// TestStore_RemoveWebsite tests removal of a stored site
func TestStore_RemoveWebsite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddWebsite(ctx, "owner", "https://a.com"))
	require.NoError(t, store.AddWebsite(ctx, "owner", "https://b.com"))

	require.NoError(t, store.RemoveWebsite(ctx, "owner", "https://a.com"))

	sites, err := store.ListWebsites(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b.com"}, sites)
}

// TestStore_RemoveWebsite_OldestFirst tests that duplicates are removed one
// at a time
func TestStore_RemoveWebsite_OldestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddWebsite(ctx, "owner", "https://a.com"))
	require.NoError(t, store.AddWebsite(ctx, "owner", "https://a.com"))

	require.NoError(t, store.RemoveWebsite(ctx, "owner", "https://a.com"))

	sites, err := store.ListWebsites(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com"}, sites)
}

// TestStore_RemoveWebsite_Absent tests that removing a missing site is not
// an error
func TestStore_RemoveWebsite_Absent(t *testing.T) {
	store := openTestStore(t)

	assert.NoError(t, store.RemoveWebsite(context.Background(), "owner", "https://ghost.com"))
}

// TestStore_Validation tests argument validation
func TestStore_Validation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.AddWebsite(ctx, "", "https://a.com"))
	assert.Error(t, store.AddWebsite(ctx, "owner", ""))
	_, err := store.ListWebsites(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.RemoveWebsite(ctx, "", "https://a.com"))
	assert.Error(t, store.RemoveWebsite(ctx, "owner", ""))
}

// TestStore_CancelledContext tests that a cancelled context aborts calls
func TestStore_CancelledContext(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.AddWebsite(ctx, "owner", "https://a.com"))
	_, err := store.ListWebsites(ctx, "owner")
	assert.Error(t, err)
}

// TestStore_Close tests that closing twice is safe
func TestStore_Close(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "webwatch.db"))
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	var nilStore *Store
	assert.NoError(t, nilStore.Close())
}

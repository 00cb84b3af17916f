package gallery

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Clear(ctx))

	empty, err := s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)

	first, err := s.Add(ctx, Image{Name: "photo.png", Size: 2_000_000, MediaType: "image/png", SourceURI: "data:image/png;base64,AA=="})
	require.NoError(t, err)
	second, err := s.Add(ctx, Image{Name: "cat.gif", Size: 12, MediaType: "image/gif", SourceURI: "data:image/gif;base64,AQ=="})
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Less(t, first.ID, second.ID, "ids must sort in insertion order")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "cat.gif", list[0].Name)
	require.Equal(t, "photo.png", list[1].Name)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "photo.png", got.Name)
	require.EqualValues(t, 2_000_000, got.Size)
	require.Equal(t, "data:image/png;base64,AA==", got.SourceURI)

	_, err = s.Get(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	concurrentAdds(t, s)
}

// concurrentAdds checks that ids from simultaneous completions still
// follow the listing order.
func concurrentAdds(t *testing.T, s Store) {
	ctx := context.Background()
	for round := 0; round < 20; round++ {
		require.NoError(t, s.Clear(ctx))

		const workers = 16
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Add(ctx, Image{Name: fmt.Sprintf("img-%d.png", i), MediaType: "image/png"})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, workers)
		for i := 1; i < len(list); i++ {
			require.Greater(t, list[i-1].ID, list[i].ID, "round %d: listing order disagrees with id order at %d", round, i)
		}
	}
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(nil))
}

func TestMemoryStore_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	_, err := s.Add(ctx, Image{Name: "a.png"})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	list[0].Name = "changed"

	again, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "a.png", again[0].Name)
}

func TestMemoryStore_AddedAtUsesClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(clockwork.NewFakeClockAt(at))

	rec, err := s.Add(context.Background(), Image{Name: "a.png"})
	require.NoError(t, err)
	require.Equal(t, at, rec.AddedAt)
}

func TestSelectionMessage(t *testing.T) {
	require.Equal(t, "Selected image: photo.png", SelectionMessage(Record{Name: "photo.png"}))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	storeContract(t, s)
}

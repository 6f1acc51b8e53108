package reference

import (
	"context"
	"errors"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/db"
	"github.com/uptrace/bun"
	"path/filepath"
	"sync"
	"testing"
)

func openTestDb(t *testing.T) *bun.DB {
	t.Helper()

	connection, err := db.Open(filepath.Join(t.TempDir(), "yellowPages.db3"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = connection.Close()
	})

	if err = db.Migrate(context.Background(), connection); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return connection
}

func TestResolveOrCreate_SameIdOneRow(t *testing.T) {
	ctx := context.Background()
	connection := openTestDb(t)
	store := New(connection)

	first, err := store.ResolveOrCreate(ctx, "Downtown")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	second, err := store.ResolveOrCreate(ctx, "Downtown")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	if first != second {
		t.Errorf("ResolveOrCreate() ids differ: %d != %d", first, second)
	}

	neighborhoods, err := db.GetNeighborhoods(ctx, connection)
	if err != nil {
		t.Fatalf("GetNeighborhoods() error = %v", err)
	}
	if len(neighborhoods) != 1 || neighborhoods[0].Name != "Downtown" || neighborhoods[0].Id != first {
		t.Errorf("neighborhoods = %+v, want one Downtown row with id %d", neighborhoods, first)
	}
}

func TestResolveOrCreate_FindsRowsFromEarlierRuns(t *testing.T) {
	ctx := context.Background()
	connection := openTestDb(t)

	id, err := New(connection).ResolveOrCreate(ctx, "Hyde Park")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	// fresh store, empty cache
	again, err := New(connection).ResolveOrCreate(ctx, "Hyde Park")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if again != id {
		t.Errorf("ResolveOrCreate() = %d, want %d", again, id)
	}
}

func TestResolveOrCreate_DistinctNames(t *testing.T) {
	ctx := context.Background()
	store := New(openTestDb(t))

	downtown, err := store.ResolveOrCreate(ctx, "Downtown")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	east, err := store.ResolveOrCreate(ctx, "East Austin")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	if downtown == east {
		t.Errorf("different names resolved to the same id %d", east)
	}
}

func TestResolveOrCreate_Concurrent(t *testing.T) {
	ctx := context.Background()
	connection := openTestDb(t)
	store := New(connection)

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = store.ResolveOrCreate(ctx, "Zilker")
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("ResolveOrCreate() #%d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("ResolveOrCreate() #%d = %d, want %d", i, ids[i], ids[0])
		}
	}

	neighborhoods, err := db.GetNeighborhoods(ctx, connection)
	if err != nil {
		t.Fatalf("GetNeighborhoods() error = %v", err)
	}
	if len(neighborhoods) != 1 {
		t.Errorf("GetNeighborhoods() returned %d rows, want 1", len(neighborhoods))
	}
}

func TestResolveOrCreate_EmptyName(t *testing.T) {
	_, err := New(openTestDb(t)).ResolveOrCreate(context.Background(), "")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("ResolveOrCreate(\"\") error = %v, want %v", err, ErrEmptyName)
	}
}

func TestResolveOrCreate_StorageError(t *testing.T) {
	connection := openTestDb(t)
	store := New(connection)
	_ = connection.Close()

	_, err := store.ResolveOrCreate(context.Background(), "Downtown")
	var storageErr *internal.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("ResolveOrCreate() error = %v, want StorageError", err)
	}
}

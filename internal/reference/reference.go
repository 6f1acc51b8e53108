// Package reference maps neighborhood names to stable ids, creating rows on
// first sight.
package reference

import (
	"context"
	"errors"
	"fmt"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/db"
	"github.com/uptrace/bun"
	"sync"
)

var ErrEmptyName = errors.New("neighborhood name is empty")

type Store struct {
	connection bun.IDB

	mu  sync.Mutex
	ids map[string]int64 // committed rows only
}

func New(connection bun.IDB) *Store {
	return &Store{
		connection: connection,
		ids:        make(map[string]int64),
	}
}

// ResolveOrCreate returns the id stored for name, inserting the row if needed.
// Insert and lookup share one transaction and the unique constraint on the
// name makes concurrent callers converge on the same row.
func (s *Store) ResolveOrCreate(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ids[name]; ok {
		return id, nil
	}

	var id int64
	err := s.connection.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, exists, err := db.FindNeighborhoodByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if exists {
			id = found
			return nil
		}

		if err = db.InsertNeighborhood(ctx, tx, name); err != nil {
			return err
		}

		found, exists, err = db.FindNeighborhoodByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("neighborhood %q missing after insert", name)
		}

		id = found
		return nil
	})
	if err != nil {
		return 0, internal.NewStorageError("resolve neighborhood", err)
	}

	s.ids[name] = id
	return id, nil
}

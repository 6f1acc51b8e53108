package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"strings"
)

func GetConnection(config *util.Config) (*bun.DB, error) {
	db, err := Open(config.OutputStore.Value)
	if err != nil {
		return nil, err
	}

	if err = Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error migrating schema: %w", err)
	}

	return db, nil
}

// Open connects to postgres when store is a postgres DSN and treats it as a
// sqlite file path otherwise.
func Open(store string) (*bun.DB, error) {
	var db *bun.DB

	if isPostgresDsn(store) {
		sqlDb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(store)))
		db = bun.NewDB(sqlDb, pgdialect.New())
	} else {
		sqlDb, err := sql.Open("sqlite3", sqliteDsn(store))
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqlDb, sqlitedialect.New())
	}

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),

		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG")))

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func isPostgresDsn(store string) bool {
	return strings.HasPrefix(store, "postgres://") || strings.HasPrefix(store, "postgresql://")
}

func sqliteDsn(path string) string {
	const params = "_busy_timeout=5000&_journal_mode=WAL"

	if strings.Contains(path, "?") {
		return path + "&" + params
	}

	return path + "?" + params
}

func Migrate(ctx context.Context, connection bun.IDB) error {
	models := []interface{}{
		(*PropertyModel)(nil),
		(*NeighborhoodModel)(nil),
		(*HoodLookupModel)(nil),
		(*CrawlRunModel)(nil),
	}

	for _, model := range models {
		if _, err := connection.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := connection.NewCreateIndex().
		Model((*HoodLookupModel)(nil)).
		Index("hood_lookup_property_id_hood_id_idx").
		Column("property_id", "hood_id").
		IfNotExists().
		Exec(ctx)

	return err
}

func InsertProperty(ctx context.Context, connection bun.IDB, property *PropertyModel) (id int64, err error) {
	err = connection.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(property).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return property.Id, nil
}

func FindNeighborhoodByName(ctx context.Context, connection bun.IDB, name string) (id int64, found bool, err error) {
	neighborhood := new(NeighborhoodModel)
	err = connection.NewSelect().
		Model(neighborhood).
		Column("id").
		Where("neighborhood = ?", name).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return neighborhood.Id, true, nil
}

// InsertNeighborhood adds the name unless it's already stored.
func InsertNeighborhood(ctx context.Context, connection bun.IDB, name string) error {
	_, err := connection.NewInsert().
		Model(&NeighborhoodModel{Name: name}).
		On("CONFLICT (neighborhood) DO NOTHING").
		Returning("NULL").
		Exec(ctx)

	return err
}

func InsertLink(ctx context.Context, connection bun.IDB, propertyId int64, hoodId int64) error {
	return connection.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&HoodLookupModel{PropertyId: propertyId, HoodId: hoodId}).
			Exec(ctx)
		return err
	})
}

func SaveRun(ctx context.Context, connection bun.IDB, run *CrawlRunModel) error {
	if run.Id == 0 {
		_, err := connection.NewInsert().Model(run).Exec(ctx)
		return err
	}

	_, err := connection.NewUpdate().Model(run).WherePK().Exec(ctx)
	return err
}

func GetRuns(ctx context.Context, connection bun.IDB) (runs []*CrawlRunModel, err error) {
	err = connection.NewSelect().Model(&runs).Order("id").Scan(ctx)

	return runs, err
}

func GetProperties(ctx context.Context, connection bun.IDB) (properties []*PropertyModel, err error) {
	err = connection.NewSelect().Model(&properties).Order("id").Scan(ctx)

	return properties, err
}

func GetNeighborhoods(ctx context.Context, connection bun.IDB) (neighborhoods []*NeighborhoodModel, err error) {
	err = connection.NewSelect().Model(&neighborhoods).Order("id").Scan(ctx)

	return neighborhoods, err
}

func GetLinks(ctx context.Context, connection bun.IDB) (links []*HoodLookupModel, err error) {
	err = connection.NewSelect().Model(&links).Order("property_id", "hood_id").Scan(ctx)

	return links, err
}

package db

import (
	"database/sql"
	"github.com/uptrace/bun"
	"time"
)

type PropertyModel struct {
	bun.BaseModel `bun:"table:properties,alias:p"`
	Id            int64          `bun:"id,pk,autoincrement"`
	Name          sql.NullString `bun:"name"`
	Url           sql.NullString `bun:"url"`
	Address       sql.NullString `bun:"address"`
	City          sql.NullString `bun:"city"`
	State         sql.NullString `bun:"state"`
	Zip           sql.NullString `bun:"zip"`
	Latitude      sql.NullString `bun:"latitude"`
	Longitude     sql.NullString `bun:"longitude"`
	Distance      sql.NullString `bun:"distance"`
	Phone         sql.NullString `bun:"phone"`
	Keywords      sql.NullString `bun:"keywords"`
	Stars         sql.NullString `bun:"stars"`
	ReviewCount   int            `bun:"review_count,notnull"`
	ProfileLink   sql.NullString `bun:"profile_link"`
}

type NeighborhoodModel struct {
	bun.BaseModel `bun:"table:neighborhoods,alias:n"`
	Id            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"neighborhood,notnull,unique"`
}

// HoodLookupModel links a property to a neighborhood. Pairs are not unique:
// a listing naming the same neighborhood twice gets two rows.
type HoodLookupModel struct {
	bun.BaseModel `bun:"table:hood_lookup,alias:hl"`
	PropertyId    int64 `bun:"property_id,notnull"`
	HoodId        int64 `bun:"hood_id,notnull"`
}

type CrawlRunModel struct {
	bun.BaseModel `bun:"table:crawl_runs,alias:cr"`
	Id            int64      `bun:"id,pk,autoincrement"`
	TraceId       string     `bun:"trace_id,notnull"`
	StartUrl      string     `bun:"start_url,notnull"`
	StartedAt     time.Time  `bun:"started_at,notnull"`
	FinishedAt    *time.Time `bun:"finished_at"`
	PageCount     int        `bun:"page_count,notnull"`
	RecordCount   int        `bun:"record_count,notnull"`
	LinkCount     int        `bun:"link_count,notnull"`
	SkippedCount  int        `bun:"skipped_count,notnull"`
	Status        string     `bun:"status,notnull"`
	Error         string     `bun:"error"`
}

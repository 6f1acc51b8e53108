package db

import (
	"context"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/uptrace/bun"
)

// Store persists crawl output. Each call is its own transaction.
type Store struct {
	connection       bun.IDB
	keywordDelimiter string
}

func NewStore(connection bun.IDB, keywordDelimiter string) *Store {
	return &Store{
		connection:       connection,
		keywordDelimiter: keywordDelimiter,
	}
}

func (s *Store) InsertListing(ctx context.Context, listing *internal.Listing) (int64, error) {
	id, err := InsertProperty(ctx, s.connection, NewPropertyModel(listing, s.keywordDelimiter))
	if err != nil {
		return 0, internal.NewStorageError("insert property", err)
	}

	return id, nil
}

func (s *Store) InsertLink(ctx context.Context, propertyId int64, hoodId int64) error {
	if err := InsertLink(ctx, s.connection, propertyId, hoodId); err != nil {
		return internal.NewStorageError("insert hood link", err)
	}

	return nil
}

func (s *Store) SaveRun(ctx context.Context, run *internal.CrawlRun, model *CrawlRunModel) error {
	model.TraceId = run.TraceId
	model.StartUrl = run.StartUrl
	model.StartedAt = run.StartedAt
	model.PageCount = run.PageCount
	model.RecordCount = run.RecordCount
	model.LinkCount = run.LinkCount
	model.SkippedCount = run.SkippedCount
	model.Status = string(run.Status)
	model.Error = run.ErrorMessage()
	if !run.FinishedAt.IsZero() {
		finishedAt := run.FinishedAt
		model.FinishedAt = &finishedAt
	}

	if err := SaveRun(ctx, s.connection, model); err != nil {
		return internal.NewStorageError("save crawl run", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	pinger, ok := s.connection.(interface {
		PingContext(ctx context.Context) error
	})
	if !ok {
		return nil
	}

	if err := pinger.PingContext(ctx); err != nil {
		return internal.NewStorageError("ping", err)
	}

	return nil
}

func NewPropertyModel(listing *internal.Listing, keywordDelimiter string) *PropertyModel {
	return &PropertyModel{
		Name:        listing.Name.NullString(),
		Url:         listing.WebsiteUrl.NullString(),
		Address:     listing.StreetAddress.NullString(),
		City:        listing.City.NullString(),
		State:       listing.Region.NullString(),
		Zip:         listing.PostalCode.NullString(),
		Latitude:    listing.Latitude.NullString(),
		Longitude:   listing.Longitude.NullString(),
		Distance:    listing.Distance.NullString(),
		Phone:       listing.Phone.NullString(),
		Keywords:    listing.KeywordsField(keywordDelimiter).NullString(),
		Stars:       listing.Rating.NullString(),
		ReviewCount: listing.ReviewCount,
		ProfileLink: listing.ProfileUrl.NullString(),
	}
}

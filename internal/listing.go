package internal

import (
	"database/sql"
	"strings"
)

// MissingMarker is how an absent field is rendered in text form.
const MissingMarker = "NULL"

// Field is an extracted text value together with its presence flag.
// The zero value is a missing field.
type Field struct {
	Value   string
	Present bool
}

func Present(value string) Field {
	return Field{Value: value, Present: true}
}

func Missing() Field {
	return Field{}
}

// FieldOf treats an empty string as structurally absent.
func FieldOf(value string) Field {
	if value == "" {
		return Missing()
	}

	return Present(value)
}

func (f Field) String() string {
	if !f.Present {
		return MissingMarker
	}

	return f.Value
}

func (f Field) NullString() sql.NullString {
	return sql.NullString{String: f.Value, Valid: f.Present}
}

// Listing is one business entry found on a directory page.
type Listing struct {
	Name          Field
	WebsiteUrl    Field
	StreetAddress Field
	City          Field
	Region        Field
	PostalCode    Field
	Latitude      Field
	Longitude     Field
	Distance      Field
	Phone         Field
	Keywords      []string
	Rating        Field
	ReviewCount   int
	ProfileUrl    Field

	// in document order, duplicates are kept
	Neighborhoods []string
}

// KeywordsField joins the keywords with delimiter, missing when there are none.
func (l *Listing) KeywordsField(delimiter string) Field {
	if len(l.Keywords) == 0 {
		return Missing()
	}

	return Present(strings.Join(l.Keywords, delimiter))
}

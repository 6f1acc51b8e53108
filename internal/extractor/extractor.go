// Package extractor turns a parsed directory page into listing records.
package extractor

import (
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/csr-ugra/yellowpages-parser/internal"
	"github.com/csr-ugra/yellowpages-parser/internal/selector"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ratingLength is how many characters of the rating text are kept.
// Ratings like "10.0" lose their last digit; kept as is for compatibility
// with rows stored by earlier crawls.
const ratingLength = 3

var digitsRegexp = regexp.MustCompile(`\d+`)

type Extractor struct {
	origin *url.URL
}

func New(siteOrigin string) (*Extractor, error) {
	origin, err := url.Parse(strings.TrimSpace(siteOrigin))
	if err != nil {
		return nil, fmt.Errorf("invalid site origin %q: %w", siteOrigin, err)
	}

	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("site origin %q must be an absolute url", siteOrigin)
	}

	return &Extractor{origin: origin}, nil
}

// Extract returns the listings of the page in document order. Containers that
// can't be read are skipped and reported in errs, they never stop the page.
func (e *Extractor) Extract(doc *goquery.Document) (listings []internal.Listing, errs []error) {
	containers := doc.Find(selector.ListingContainer.String())
	listings = make([]internal.Listing, 0, containers.Length())

	containers.Each(func(i int, s *goquery.Selection) {
		listing, err := e.extractListing(i, s)
		if err != nil {
			errs = append(errs, err)
			return
		}

		listings = append(listings, listing)
	})

	return listings, errs
}

func (e *Extractor) extractListing(index int, container *goquery.Selection) (listing internal.Listing, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &internal.ExtractionError{Index: index, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	info := container.Find(selector.Info.String()).First()
	if info.Length() == 0 {
		return listing, &internal.ExtractionError{Index: index, Err: internal.NewElementNotFoundError(selector.Info)}
	}

	// basic info
	listing.Name = text(info, selector.Name)
	listing.StreetAddress = text(info, selector.StreetAddress)
	listing.City = text(info, selector.Locality)
	listing.Region = text(info, selector.Region)
	listing.PostalCode = text(info, selector.PostalCode)
	listing.Phone = text(info, selector.Phone)

	listing.Keywords = texts(container, selector.Categories)

	// geo spans live next to the info block
	listing.Latitude = text(container, selector.Latitude)
	listing.Longitude = text(container, selector.Longitude)
	listing.Distance = text(container, selector.Distance)

	listing.Rating = truncateRating(text(container, selector.Rating))
	listing.ReviewCount = parseReviewCount(text(container, selector.ReviewCount))

	listing.WebsiteUrl = attr(container, selector.WebsiteLink, "href")
	listing.ProfileUrl = e.resolve(attr(container, selector.MoreInfoLink, "href"))

	listing.Neighborhoods = texts(container, selector.Neighborhoods)

	return listing, nil
}

// NextPage returns the absolute url of the pagination "next" control.
func (e *Extractor) NextPage(doc *goquery.Document) (string, bool) {
	next := e.resolve(attr(doc.Selection, selector.NextPageLink, "href"))
	if !next.Present {
		return "", false
	}

	return next.Value, true
}

// ResolveUrl resolves href against the site origin.
func (e *Extractor) ResolveUrl(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimSuffix(e.origin.String(), "/") + "/" + strings.TrimPrefix(href, "/")
	}

	return e.origin.ResolveReference(ref).String()
}

func (e *Extractor) resolve(href internal.Field) internal.Field {
	if !href.Present {
		return href
	}

	return internal.Present(e.ResolveUrl(href.Value))
}

// text joins the texts of every node matching sel, like a field spread over
// several spans ("<span></span><span>4.5</span>").
func text(s *goquery.Selection, sel selector.Selector) internal.Field {
	return internal.FieldOf(strings.Join(texts(s, sel), " "))
}

func texts(s *goquery.Selection, sel selector.Selector) []string {
	var result []string
	s.Find(sel.String()).Each(func(_ int, item *goquery.Selection) {
		if t := util.CollapseSpace(item.Text()); t != "" {
			result = append(result, t)
		}
	})

	return result
}

func attr(s *goquery.Selection, sel selector.Selector, name string) internal.Field {
	value, exists := s.Find(sel.String()).First().Attr(name)
	if !exists {
		return internal.Missing()
	}

	return internal.FieldOf(strings.TrimSpace(value))
}

func truncateRating(raw internal.Field) internal.Field {
	if !raw.Present {
		return raw
	}

	return internal.Present(util.TruncateRunes(raw.Value, ratingLength))
}

func parseReviewCount(raw internal.Field) int {
	if !raw.Present {
		return 0
	}

	digits := digitsRegexp.FindString(strings.ReplaceAll(raw.Value, ",", ""))
	if digits == "" {
		return 0
	}

	count, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}

	return count
}

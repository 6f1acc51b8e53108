package selector

type Selector string

func (s Selector) String() string {
	return string(s)
}

// listing page template
const (
	ListingContainer = Selector("div.listing_content")
	Info             = Selector("div.info")

	Name          = Selector("h3 a")
	StreetAddress = Selector("span.street-address")
	Locality      = Selector("span.locality")
	Region        = Selector("span.region")
	PostalCode    = Selector("span.postal-code")
	Phone         = Selector("span.business-phone")

	Categories    = Selector("ul.business-categories li a")
	Neighborhoods = Selector("ul.business-neighborhoods li a")

	Latitude  = Selector("span.latitude")
	Longitude = Selector("span.longitude")
	Distance  = Selector("span.distance")

	Rating      = Selector("span.average-rating span")
	ReviewCount = Selector("span.review-count span.count")

	WebsiteLink  = Selector("li a.track-visit-website")
	MoreInfoLink = Selector("li a.track-more-info")

	NextPageLink = Selector("ol.track-pagination li.next a")
)

package shopify

// PublishStatus is the normalized outcome of a publish mutation.
type PublishStatus string

const (
	StatusPublished        PublishStatus = "published"
	StatusAlreadyPublished PublishStatus = "already_published"
	StatusFailed           PublishStatus = "failed"
)

// ProductSummary is one catalog product as enumerated by a sync run.
type ProductSummary struct {
	ID          string `json:"id"`
	LegacyID    string `json:"legacy_id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
}

// ProductPage is one page of cursor-paginated products.
type ProductPage struct {
	Products    []ProductSummary `json:"products"`
	HasNextPage bool             `json:"has_next_page"`
	EndCursor   string           `json:"end_cursor"`
}

// Product is the legacy REST product shape, reduced to the fields the
// repair path reads and writes.
type Product struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Handle   string `json:"handle"`
	Status   string `json:"status"`
}

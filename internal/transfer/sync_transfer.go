package transfer

// SyncOptions bounds an on-demand "inspect the last N posts" cycle. Window is
// how many recent posts to pull from the platform; offset/limit slice that
// window after the fetch. A cycle run with options never advances the
// connection watermark.
type SyncOptions struct {
	Window int `json:"window"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type SyncResult struct {
	PostsProcessed int `json:"posts_processed"`
}

type DeliveryFilter struct {
	PostID    string
	WebsiteID string
	Status    string
	Page      int
	Limit     int
}

package ports

import "context"

// Port: a boundary for downloading message attachments from the messaging
// provider's media host.
type MediaFetcher interface {
	// Return the raw bytes behind a media URL.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

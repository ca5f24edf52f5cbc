package media

import "context"

// Uploader pushes a local file to the image host and returns its public URL.
// Registration and avatar/cover updates treat the host as opaque; any failure
// is surfaced to the caller untouched.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Package storage abstracts where uploaded assets live: a local directory
// served by this process, or an S3-compatible bucket behind a public URL.
package storage

import "context"

// ObjectStore persists asset bytes under a caller-chosen key and returns
// the public URL the asset is reachable at.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

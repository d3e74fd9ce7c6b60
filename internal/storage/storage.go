// Package storage is the attachment store boundary: it keeps task
// attachment binaries and hands out public URLs for stored references.
package storage

import (
	"context"
	"io"
)

// Store durably keeps uploaded binaries. Implementations report failures
// as apperr.Storage errors so callers can surface them unmasked.
type Store interface {
	// Save writes the binary and returns its stored reference.
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	// Delete removes a stored binary. Deleting a missing reference is
	// not an error.
	Delete(ctx context.Context, ref string) error
	// URL returns the public URL for a stored reference.
	URL(ref string) string
}

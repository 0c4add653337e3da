// Package cache carries the revalidation signal for rendered storefront
// pages. Admin mutations mark pages stale; the rendering layer re-renders a
// stale page on its next fetch.
package cache

import "context"

// Revalidator marks cached page renders stale, keyed by logical page path.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

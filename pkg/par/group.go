// SPDX-License-Identifier: MPL-2.0

package par

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// errgroupWithLimit returns an errgroup bound to ctx running at most limit
// goroutines at once. A limit below 1 means no limit.
func errgroupWithLimit(ctx context.Context, limit int) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return g, gctx
}

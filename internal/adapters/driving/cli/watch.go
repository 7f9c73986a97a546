package cli

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/medrag/internal/logger"
)

// runWatching runs fn and, when watch is set, rebuilds the session's
// knowledge base on corpus changes until fn returns. A failing watcher
// cancels fn.
func runWatching(ctx context.Context, session *Session, watch bool, fn func(ctx context.Context) error) error {
	if !watch {
		return fn(ctx)
	}
	if session.Watch == nil {
		logger.Warn("watching is not available for corpus %s", session.Corpus.Name)
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Watch(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

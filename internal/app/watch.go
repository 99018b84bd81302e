package app

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/sweep/internal/rule"
	"github.com/andyballingall/sweep/internal/walker"
)

// runWatch watches every root and reruns a scan whenever the tree changes.
// Re-scans are always dry runs: cleaning from a change-triggered scan would
// itself trigger further change events. The loop ends with the context.
func runWatch(ctx context.Context, roots []string, rules []*rule.Rule,
	newReporter func() walker.Reporter, logger *slog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)
	events := make(chan string, 1)

	for _, root := range roots {
		wt := walker.NewWatcher(root, logger)
		g.Go(func() error {
			return wt.Watch(gctx, func(r string) {
				select {
				case events <- r:
				default: // a re-scan is already pending
				}
			})
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case root := <-events:
				rep := newReporter()
				w := walker.New(rules, rep, logger, true)
				s, err := w.Walk(gctx, root)
				if err != nil {
					return err
				}
				rep.Summary(s)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/freeboost/internal/catalog"
)

// Pool runs one [Worker] per service.
type Pool struct {
	session Session
	opts    Options
}

// NewPool creates a [Pool] whose workers share session and opts.
func NewPool(session Session, opts Options) *Pool {
	return &Pool{session: session, opts: opts}
}

// Run starts exactly one worker per service, unavailable ones included, and
// blocks until they have all returned or ctx is cancelled.
//
// On cancellation Run returns ctx.Err() without waiting for workers; they
// observe the same context and wind down on their own.
func (p *Pool) Run(ctx context.Context, services []catalog.Service) error {
	if len(services) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(len(services))

	for _, svc := range services {
		w := New(p.session, svc, p.opts)
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

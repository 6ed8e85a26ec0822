package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// outcome is the result of one dispatched unit, tagged with the position of
// its input so callers can reassemble results in submission order.
type outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// dispatch runs fn over every input with at most limit calls in flight.
// Per-unit errors are recorded on the outcome and never cancel siblings.
// Outcomes are returned in input order regardless of completion order.
// A limit below 1 is treated as 1, which runs strictly sequentially.
func dispatch[In, Out any](ctx context.Context, limit int, inputs []In, fn func(context.Context, In) (Out, error)) []outcome[Out] {
	if limit < 1 {
		limit = 1
	}

	out := make([]outcome[Out], len(inputs))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			out[i] = outcome[Out]{Index: i, Err: err}
			continue
		}
		g.Go(func() error {
			v, err := fn(ctx, in)
			// Each goroutine owns slot i.
			out[i] = outcome[Out]{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

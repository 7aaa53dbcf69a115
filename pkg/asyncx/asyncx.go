// Package asyncx provides small concurrency combinators for fanning out
// independent predicate checks and aggregating their results deterministically.
package asyncx

import (
	"context"
	"sync"
)

// outcome is the result of a single predicate evaluation.
type outcome struct {
	ok  bool
	err error
}

// Every runs all predicates concurrently and reports whether every one of
// them returned true.
//
// Aggregation is deterministic regardless of arrival order: a false or an
// error is definitive, so Every cancels the remaining predicates and returns
// as soon as either arrives. The first error (by completion order) wins.
// An empty input is trivially true.
func Every(ctx context.Context, preds ...func(context.Context) (bool, error)) (bool, error) {
	if len(preds) == 0 {
		return true, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := fanOut(ctx, preds)

	for remaining := len(preds); remaining > 0; remaining-- {
		out := <-results
		if out.err != nil {
			return false, out.err
		}
		if !out.ok {
			return false, nil
		}
	}
	return true, nil
}

// Some runs all predicates concurrently and reports whether at least one of
// them returned true.
//
// A true result is definitive and short-circuits the rest. An error is only
// reported when no predicate succeeded: if every predicate either failed or
// returned false and at least one failed, Some returns the first error seen
// so the caller cannot mistake an outage for a clean "no".
// An empty input is trivially false.
func Some(ctx context.Context, preds ...func(context.Context) (bool, error)) (bool, error) {
	if len(preds) == 0 {
		return false, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := fanOut(ctx, preds)

	var firstErr error
	for remaining := len(preds); remaining > 0; remaining-- {
		out := <-results
		if out.ok && out.err == nil {
			return true, nil
		}
		if out.err != nil && firstErr == nil {
			firstErr = out.err
		}
	}
	return false, firstErr
}

// fanOut starts one goroutine per predicate. The channel is buffered so
// goroutines outliving an early return never block on send.
func fanOut(ctx context.Context, preds []func(context.Context) (bool, error)) <-chan outcome {
	results := make(chan outcome, len(preds))

	var wg sync.WaitGroup
	wg.Add(len(preds))
	for _, pred := range preds {
		go func(pred func(context.Context) (bool, error)) {
			defer wg.Done()
			ok, err := pred(ctx)
			results <- outcome{ok: ok, err: err}
		}(pred)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

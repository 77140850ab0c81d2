// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/Liam-coding/Voice-API/result"
)

// Arbiter lets one exchange use the shared session at a time. Waiting
// callers block; there is no fairness guarantee.
type Arbiter struct {
	sem  *semaphore.Weighted
	busy atomic.Bool
	// onBusy observes every busy transition.
	onBusy func(bool)
}

func NewArbiter() *Arbiter {
	return &Arbiter{sem: semaphore.NewWeighted(1), onBusy: func(bool) {}}
}

// Execute runs fn while holding the token. It returns ctx.Err() without
// running fn if ctx ends first. The token is released on every return
// path, panics included.
func (a *Arbiter) Execute(ctx context.Context, fn func(context.Context) (result.Result, error)) (result.Result, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return result.Result{}, err
	}
	defer a.sem.Release(1)

	a.setBusy(true)
	defer a.setBusy(false)

	return fn(ctx)
}

// Busy reports whether an exchange holds the token.
func (a *Arbiter) Busy() bool { return a.busy.Load() }

// Wait blocks until the token is free or ctx ends.
func (a *Arbiter) Wait(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	a.sem.Release(1)
	return nil
}

func (a *Arbiter) setBusy(v bool) {
	a.busy.Store(v)
	a.onBusy(v)
}

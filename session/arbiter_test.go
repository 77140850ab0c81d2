// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Liam-coding/Voice-API/result"
)

func TestArbiter_SingleFlight(t *testing.T) {
	t.Parallel()

	const callers = 16
	a := NewArbiter()

	var active, peak, done atomic.Int32
	var g errgroup.Group
	for range callers {
		g.Go(func() error {
			_, err := a.Execute(context.Background(), func(context.Context) (result.Result, error) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				if !a.Busy() {
					return result.Result{}, errors.New("token held but not busy")
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				done.Add(1)
				return result.Result{}, nil
			})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
	if done.Load() != callers {
		t.Errorf("completions = %d, want %d", done.Load(), callers)
	}
	if a.Busy() {
		t.Error("busy after all callers finished")
	}
}

func TestArbiter_CanceledWaiter(t *testing.T) {
	t.Parallel()

	a := NewArbiter()
	release := make(chan struct{})
	held := make(chan struct{})

	go func() {
		_, _ = a.Execute(context.Background(), func(context.Context) (result.Result, error) {
			close(held)
			<-release
			return result.Result{}, nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ran := false
	_, err := a.Execute(ctx, func(context.Context) (result.Result, error) {
		ran = true
		return result.Result{}, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) || ran {
		t.Errorf("err = %v, ran = %v", err, ran)
	}

	close(release)
	if err := a.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.Busy() {
		t.Error("still busy after release")
	}
}

func TestArbiter_ReleasesOnPanic(t *testing.T) {
	t.Parallel()

	a := NewArbiter()
	func() {
		defer func() { _ = recover() }()
		_, _ = a.Execute(context.Background(), func(context.Context) (result.Result, error) {
			panic("boom")
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.Wait(ctx); err != nil {
		t.Errorf("token leaked after panic: %v", err)
	}
}

func BenchmarkArbiter_Execute(b *testing.B) {
	a := NewArbiter()
	ctx := context.Background()
	fn := func(context.Context) (result.Result, error) { return result.Result{}, nil }

	for b.Loop() {
		_, _ = a.Execute(ctx, fn)
	}
}

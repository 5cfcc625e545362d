// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	runErr error
	block  bool
	closed bool
}

func (f *fakeRunner) Run(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return nil
	}
	return f.runErr
}

func (f *fakeRunner) Close() error {
	f.closed = true
	return nil
}

func TestRouterServiceBuildsFreshRunner(t *testing.T) {
	var built []*fakeRunner
	svc := NewRouterService("like-router", func() (Runner, error) {
		r := &fakeRunner{runErr: errors.New("subscriber lost")}
		built = append(built, r)
		return r, nil
	})

	for i := 0; i < 2; i++ {
		err := svc.Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "subscriber lost") {
			t.Errorf("Serve() = %v", err)
		}
	}
	if len(built) != 2 {
		t.Fatalf("built %d runners, want 2", len(built))
	}
	for i, r := range built {
		if !r.closed {
			t.Errorf("runner %d not closed", i)
		}
	}
}

func TestRouterServiceCancellation(t *testing.T) {
	runner := &fakeRunner{block: true}
	svc := NewRouterService("like-router", func() (Runner, error) { return runner, nil })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if !runner.closed {
		t.Error("runner not closed on shutdown")
	}
}

func TestRouterServiceErrors(t *testing.T) {
	t.Run("build failure", func(t *testing.T) {
		buildErr := errors.New("nats: no servers available")
		svc := NewRouterService("like-router", func() (Runner, error) { return nil, buildErr })
		if err := svc.Serve(context.Background()); !errors.Is(err, buildErr) {
			t.Errorf("Serve() = %v, want %v", err, buildErr)
		}
	})

	t.Run("clean stop is restarted", func(t *testing.T) {
		svc := NewRouterService("like-router", func() (Runner, error) { return &fakeRunner{}, nil })
		if err := svc.Serve(context.Background()); err == nil {
			t.Error("Serve() = nil, want an error so the supervisor restarts it")
		}
	})
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"fmt"
)

// Runner is a consumer that runs until its context ends. Once Run returns
// the Runner is spent.
type Runner interface {
	Run(ctx context.Context) error
	Close() error
}

// RunnerFactory builds a fresh Runner, e.g. eventprocessor.NewPipeline.
type RunnerFactory func() (Runner, error)

// RouterService supervises an event consumer, rebuilding it on every start.
type RouterService struct {
	name  string
	build RunnerFactory
}

// NewRouterService creates the service.
func NewRouterService(name string, build RunnerFactory) *RouterService {
	return &RouterService{name: name, build: build}
}

// Serve implements suture.Service.
func (r *RouterService) Serve(ctx context.Context) (err error) {
	runner, err := r.build()
	if err != nil {
		return fmt.Errorf("%s: build: %w", r.name, err)
	}
	defer func() {
		if closeErr := runner.Close(); closeErr != nil && err == nil && ctx.Err() == nil {
			err = fmt.Errorf("%s: close: %w", r.name, closeErr)
		}
	}()

	runErr := runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", r.name, runErr)
	}
	// The consumer stopped on its own; restart it.
	return errors.New(r.name + ": stopped unexpectedly")
}

// String implements fmt.Stringer for supervisor logs.
func (r *RouterService) String() string {
	return r.name
}

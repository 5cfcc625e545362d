// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultMongoImage = "mongo:7.0"
	DefaultRedisImage = "redis:7-alpine"
	DefaultNATSImage  = "nats:2.10-alpine"

	defaultStartTimeout = 60 * time.Second
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// Service is a started container with the address clients should use.
type Service struct {
	testcontainers.Container
	URI string
}

// StartMongo starts a single-node MongoDB and returns its connection URI.
func StartMongo(ctx context.Context) (*Service, error) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        DefaultMongoImage,
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(defaultStartTimeout),
	}, "mongodb://%s")
}

// StartRedis starts Redis and returns its host:port address.
func StartRedis(ctx context.Context) (*Service, error) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        DefaultRedisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(defaultStartTimeout),
	}, "%s")
}

// StartNATS starts a NATS server with JetStream and returns its URL.
func StartNATS(ctx context.Context) (*Service, error) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        DefaultNATSImage,
		Cmd:          []string{"-js"},
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(defaultStartTimeout),
	}, "nats://%s")
}

func start(ctx context.Context, req testcontainers.ContainerRequest, uriFormat string) (*Service, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", req.Image, err)
	}

	// Each container exposes exactly one port, so the default endpoint is it.
	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container endpoint: %w", err)
	}

	return &Service{
		Container: container,
		URI:       fmt.Sprintf(uriFormat, endpoint),
	}, nil
}

// CleanupContainer is a helper for deferred container cleanup that logs errors.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

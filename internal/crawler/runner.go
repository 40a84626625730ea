package crawler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog"
)

// RunnerConfig describes how to run the crawler service container locally.
// Used when crawler.managed is enabled; deployments that run the crawler
// elsewhere skip the runner entirely.
type RunnerConfig struct {
	Image         string
	ContainerName string
	HostPort      string
	MemoryLimit   int64
	StartupWait   time.Duration
}

// Runner manages the lifecycle of the crawler service container.
type Runner struct {
	cfg RunnerConfig
	cli *client.Client
	log zerolog.Logger
}

func NewRunner(cfg RunnerConfig, logger zerolog.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	if cfg.ContainerName == "" {
		cfg.ContainerName = "campwatch-crawler"
	}
	if cfg.StartupWait <= 0 {
		cfg.StartupWait = 30 * time.Second
	}
	return &Runner{
		cfg: cfg,
		cli: cli,
		log: logger.With().Str("component", "crawler_runner").Logger(),
	}, nil
}

// EnsureRunning starts the crawler container if it is not already up,
// pulling the image when it is missing locally, then waits for the service
// health endpoint to respond.
func (r *Runner) EnsureRunning(ctx context.Context, healthCheck func(context.Context) error) error {
	inspect, err := r.cli.ContainerInspect(ctx, r.cfg.ContainerName)
	if err == nil && inspect.State != nil && inspect.State.Running {
		r.log.Debug().Str("container", r.cfg.ContainerName).Msg("crawler container already running")
		return r.waitHealthy(ctx, healthCheck)
	}

	if err == nil {
		// Container exists but is stopped; remove the stale one.
		if err := r.cli.ContainerRemove(ctx, r.cfg.ContainerName, container.RemoveOptions{Force: true}); err != nil {
			return fmt.Errorf("failed to remove stale crawler container: %w", err)
		}
	}

	if _, err := r.cli.ImageInspect(ctx, r.cfg.Image); err != nil {
		r.log.Info().Str("image", r.cfg.Image).Msg("crawler image not found locally, pulling")
		reader, err := r.cli.ImagePull(ctx, r.cfg.Image, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull crawler image: %w", err)
		}
		io.Copy(io.Discard, reader)
		reader.Close()
	}

	port := nat.Port("3000/tcp")
	containerConfig := &container.Config{
		Image:        r.cfg.Image,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: r.cfg.HostPort}},
		},
		Resources: container.Resources{
			Memory: r.cfg.MemoryLimit,
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}

	resp, err := r.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, r.cfg.ContainerName)
	if err != nil {
		return fmt.Errorf("failed to create crawler container: %w", err)
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start crawler container: %w", err)
	}
	r.log.Info().Str("container_id", resp.ID).Msg("crawler container started")

	return r.waitHealthy(ctx, healthCheck)
}

// Stop stops the managed crawler container if it exists.
func (r *Runner) Stop(ctx context.Context) error {
	timeout := 10
	if err := r.cli.ContainerStop(ctx, r.cfg.ContainerName, container.StopOptions{Timeout: &timeout}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to stop crawler container: %w", err)
	}
	return nil
}

func (r *Runner) waitHealthy(ctx context.Context, healthCheck func(context.Context) error) error {
	deadline := time.Now().Add(r.cfg.StartupWait)
	var lastErr error

	for time.Now().Before(deadline) {
		if lastErr = healthCheck(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	return fmt.Errorf("crawler did not become healthy within %s: %w", r.cfg.StartupWait, lastErr)
}

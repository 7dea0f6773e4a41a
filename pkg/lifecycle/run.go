/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/companion/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Runner is a long-lived component. Run blocks until ctx is canceled or the
// component fails.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (r RunnerFunc) Name() string { return r.ComponentName }

func (r RunnerFunc) Run(ctx context.Context) error { return r.Fn(ctx) }

// Options controls Run.
type Options struct {
	Runners         []Runner
	OnShutdown      []func(ctx context.Context) error
	ShutdownTimeout time.Duration
	Logger          logger.Logger
}

// Run starts every runner, waits for SIGINT/SIGTERM or the first runner
// failure, then executes the shutdown hooks in order with a bounded context.
func Run(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runGroup(ctx, opts)
}

func runGroup(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, r := range opts.Runners {
		r := r

		g.Go(func() error {
			log.Info().Str("runner", r.Name()).Msg("Starting component")

			err := r.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("runner", r.Name()).Msg("Component stopped with error")

				return err
			}

			log.Info().Str("runner", r.Name()).Msg("Component stopped")

			return nil
		})
	}

	runErr := g.Wait()

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var shutdownErrs []error

	for _, hook := range opts.OnShutdown {
		if err := hook(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Shutdown hook failed")
			shutdownErrs = append(shutdownErrs, err)
		}
	}

	return errors.Join(append([]error{runErr}, shutdownErrs...)...)
}

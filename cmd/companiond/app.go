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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/companion/pkg/agent"
	"github.com/carverauto/companion/pkg/api"
	"github.com/carverauto/companion/pkg/catalog"
	"github.com/carverauto/companion/pkg/config"
	"github.com/carverauto/companion/pkg/kv"
	"github.com/carverauto/companion/pkg/lifecycle"
	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/natsutil"
	"github.com/carverauto/companion/pkg/registry"
	devicesync "github.com/carverauto/companion/pkg/sync"
)

const dataDirPerms = 0o750

type app struct {
	cfg    *config.ServiceConfig
	logger logger.Logger

	nc        *nats.Conn
	kvStore   kv.KVStore
	registry  *registry.Registry
	transport devicesync.Transport
	syncer    *devicesync.Syncer
	server    *api.APIServer
}

func newApp(ctx context.Context, cfg *config.ServiceConfig, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	if err := a.build(ctx); err != nil {
		a.close()

		return nil, err
	}

	return a, nil
}

func (a *app) build(ctx context.Context) error {
	if a.cfg.NeedsNATS() {
		tlsOpts, err := natsutil.Options(a.cfg.Sync.TLS)
		if err != nil {
			return err
		}

		nc, err := devicesync.Connect(a.cfg.Sync.NATSURL, "companiond-"+a.cfg.SurfaceID, a.logger, tlsOpts...)
		if err != nil {
			return err
		}

		a.nc = nc
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	a.registry = registry.New(store, a.logger)

	if err = a.registry.Restore(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Starting with an empty device list")
	}

	cat := catalog.Default()

	if a.cfg.CatalogPath != "" {
		if cat, err = catalog.Load(a.cfg.CatalogPath); err != nil {
			return err
		}
	}

	client, err := a.newAgentClient()
	if err != nil {
		return err
	}

	opts := []func(*api.APIServer){
		api.WithRegistry(a.registry),
		api.WithAgentClient(client),
		api.WithCatalog(cat),
		api.WithLogger(a.logger),
		api.WithAPIKey(a.cfg.APIKey),
	}

	if a.transport, err = a.openTransport(ctx); err != nil {
		return err
	}

	if a.transport != nil {
		a.syncer, err = devicesync.NewSyncer(a.registry, a.transport, a.cfg.SurfaceID,
			devicesync.WithLegacyPayload(a.cfg.Sync.LegacyPayload),
			devicesync.WithLogger(a.logger))
		if err != nil {
			return err
		}

		opts = append(opts, api.WithPusher(a.syncer))
	}

	a.server, err = api.NewAPIServer(a.cfg.CORS, opts...)

	return err
}

func (a *app) openStore(ctx context.Context) (registry.Store, error) {
	switch a.cfg.Store {
	case config.StoreKV:
		store, err := a.openKV(ctx)
		if err != nil {
			return nil, err
		}

		return registry.NewKVSnapshotStore(store, a.cfg.SurfaceID), nil
	case config.StoreMemory:
		return registry.NewKVSnapshotStore(kv.NewMemoryStore(), a.cfg.SurfaceID), nil
	default:
		if err := os.MkdirAll(a.cfg.DataDir, dataDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}

		return registry.NewFileStore(a.cfg.DevicesPath()), nil
	}
}

func (a *app) openKV(ctx context.Context) (kv.KVStore, error) {
	if a.kvStore != nil {
		return a.kvStore, nil
	}

	store, err := kv.NewNatsStoreFromConn(ctx, a.nc, a.cfg.Sync.Bucket, 0, a.logger)
	if err != nil {
		return nil, err
	}

	a.kvStore = store

	return store, nil
}

func (a *app) newAgentClient() (*agent.Client, error) {
	schemas := agent.DefaultSchemas()

	for _, sc := range a.cfg.Agent.Schemas {
		format, err := agent.ParseStatusFormat(sc.Format)
		if err != nil {
			return nil, err
		}

		name := sc.Name
		if name == "" {
			name = sc.App
		}

		schemas.Register(sc.App, agent.Schema{Name: name, StatusPath: sc.StatusPath, Format: format})
	}

	return agent.NewClient(a.cfg.Agent.BaseURL,
		agent.WithTimeout(a.cfg.Timeout()),
		agent.WithSchemas(schemas),
		agent.WithLogger(a.logger),
	), nil
}

func (a *app) openTransport(ctx context.Context) (devicesync.Transport, error) {
	switch a.cfg.Sync.Transport {
	case config.TransportNATS:
		return devicesync.NewNATSTransportFromConn(a.nc, a.cfg.User, a.logger), nil
	case config.TransportKV:
		store, err := a.openKV(ctx)
		if err != nil {
			return nil, err
		}

		return devicesync.NewKVTransport(store, a.cfg.User), nil
	case config.TransportMemory:
		return devicesync.NewMemoryTransport(), nil
	default:
		return nil, nil
	}
}

func (a *app) lifecycleOptions() lifecycle.Options {
	runners := []lifecycle.Runner{
		lifecycle.RunnerFunc{
			ComponentName: "api",
			Fn: func(ctx context.Context) error {
				return a.server.Serve(ctx, a.cfg.ListenAddr)
			},
		},
	}

	if a.syncer != nil {
		runners = append(runners, lifecycle.RunnerFunc{ComponentName: "sync", Fn: a.syncer.Run})
	}

	return lifecycle.Options{
		Runners: runners,
		OnShutdown: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				if !a.registry.HasChanges() {
					return nil
				}

				return a.registry.Persist(ctx)
			},
			func(context.Context) error {
				a.close()

				return nil
			},
		},
		Logger: a.logger,
	}
}

func (a *app) close() {
	if a.transport != nil {
		if err := a.transport.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close sync transport")
		}
	}

	if a.kvStore != nil {
		if err := a.kvStore.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close KV store")
		}
	}

	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to drain NATS connection")
		}
	}
}

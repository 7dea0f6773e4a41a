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
	"flag"
	"log"
	"os"
	"strings"

	"github.com/carverauto/companion/pkg/config"
	"github.com/carverauto/companion/pkg/kv"
	"github.com/carverauto/companion/pkg/lifecycle"
	"github.com/carverauto/companion/pkg/version"
)

const (
	defaultConfigKVURL    = "nats://127.0.0.1:4222"
	defaultConfigKVBucket = "companion"
)

func main() {
	configPath := flag.String("config", "/etc/companion/companiond.json", "Path to config file")
	flag.Parse()

	ctx := context.Background()
	cfgLoader := config.NewConfig(nil)

	var configKV kv.KVStore

	if strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "kv") {
		store, err := kv.NewNatsStore(ctx, envOrDefault("CONFIG_KV_NATS_URL", defaultConfigKVURL),
			envOrDefault("CONFIG_KV_BUCKET", defaultConfigKVBucket), 0, nil)
		if err != nil {
			log.Fatalf("Failed to open config KV store: %v", err)
		}

		configKV = store
		cfgLoader.SetKVStore(store)
	}

	var cfg config.ServiceConfig

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := lifecycle.CreateComponentLogger("companiond", cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info().
		Str("version", version.Get().String()).
		Str("surface_id", cfg.SurfaceID).
		Str("store", cfg.Store).
		Str("sync_transport", cfg.Sync.Transport).
		Msg("Starting companiond")

	app, err := newApp(ctx, &cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start companiond: %v", err)
	}

	opts := app.lifecycleOptions()

	if configKV != nil {
		opts.Runners = append(opts.Runners, lifecycle.RunnerFunc{
			ComponentName: "config-watch",
			Fn: func(ctx context.Context) error {
				return config.WatchKVConfig(ctx, configKV, *configPath, logger)
			},
		})
		opts.OnShutdown = append(opts.OnShutdown, func(context.Context) error {
			return configKV.Close()
		})
	}

	if err := lifecycle.Run(ctx, opts); err != nil {
		log.Fatalf("companiond failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

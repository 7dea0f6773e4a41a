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
	"os/signal"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/companion/pkg/cli"
	"github.com/carverauto/companion/pkg/lifecycle"
	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/version"
)

func main() {
	cfg, err := cli.ParseFlags(os.Args[1:])
	if cfg != nil && cfg.Help {
		cli.ShowHelp(os.Stdout)

		return
	}

	if cfg != nil && cfg.Version {
		fmt.Println("companion", version.Get())

		return
	}

	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)

	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		cli.ShowHelp(os.Stderr)
		os.Exit(2)
	}

	if err := lifecycle.InitializeLogger(&logger.Config{Level: "warn", Debug: cfg.Debug, Output: "stderr"}); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}

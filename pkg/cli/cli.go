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

// Package cli implements the companion command-line tool.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carverauto/companion/pkg/registry"
)

const (
	defaultServer = "http://localhost:8088"
	outputTable   = "table"
	outputJSON    = "json"
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// noArgsHandler accepts commands that take nothing.
type noArgsHandler struct{ name string }

func (h noArgsHandler) Parse(args []string, _ *CmdConfig) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", errInvalidArgument, h.name)
	}

	return nil
}

// indexHandler handles commands addressed to one device.
type indexHandler struct{ name string }

func (h indexHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s <index>", errMissingArgument, h.name)
	}

	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	cfg.Index = i

	return nil
}

// AddHandler handles flags for the add subcommand.
type AddHandler struct{}

func (AddHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "device name")
	code := fs.String("code", "", "agent code")
	app := fs.String("app", "", "app tag, looked up from the agent when empty")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing add flags: %w", err)
	}

	if *code == "" {
		return errCodeRequired
	}

	cfg.Name = *name
	cfg.Code = *code
	cfg.App = *app

	return nil
}

// EditHandler handles flags for the edit subcommand. Only flags that are
// given are sent.
type EditHandler struct{}

func (EditHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: edit <index> [flags]", errMissingArgument)
	}

	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "device name")
	code := fs.String("code", "", "agent code")
	app := fs.String("app", "", "app tag")
	installed := fs.Bool("installed", false, "installed on the secondary surface")

	if err = fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("parsing edit flags: %w", err)
	}

	cfg.Index = i
	cfg.Fields = nil

	fs.Visit(func(f *flag.Flag) {
		cfg.Fields = append(cfg.Fields, f.Name)
	})

	cfg.Name = *name
	cfg.Code = *code
	cfg.App = *app
	cfg.On = *installed

	return nil
}

// MoveHandler handles the mv subcommand.
type MoveHandler struct{}

func (MoveHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: mv <from> <to>", errMissingArgument)
	}

	from, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	to, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	cfg.Index = from
	cfg.To = to

	return nil
}

// SelectHandler handles the select subcommand.
type SelectHandler struct{}

func (SelectHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: select <index|none>", errMissingArgument)
	}

	if strings.EqualFold(args[0], "none") {
		cfg.Index = registry.NoSelection

		return nil
	}

	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	cfg.Index = i

	return nil
}

// SwitchHandler handles the switch subcommand.
type SwitchHandler struct{}

func (SwitchHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: switch <index> on|off", errMissingArgument)
	}

	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	switch strings.ToLower(args[1]) {
	case "on", "true", "1":
		cfg.On = true
	case "off", "false", "0":
		cfg.On = false
	default:
		return fmt.Errorf("%w: switch state %q", errInvalidArgument, args[1])
	}

	cfg.Index = i

	return nil
}

// SliderHandler handles the slider subcommand.
type SliderHandler struct{}

func (SliderHandler) Parse(args []string, cfg *CmdConfig) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: slider <index> <value>", errMissingArgument)
	}

	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	v, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: slider value %q", errInvalidArgument, args[1])
	}

	cfg.Index = i
	cfg.Value = v

	return nil
}

// ExportHandler handles flags for the export subcommand.
type ExportHandler struct{}

func (ExportHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("file", registry.DefaultFileName, "saved device list")
	legacy := fs.Bool("legacy", false, "use the line based payload format")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing export flags: %w", err)
	}

	cfg.File = *file
	cfg.Legacy = *legacy

	return nil
}

// ApplyHandler handles flags for the apply subcommand.
type ApplyHandler struct{}

func (ApplyHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("file", registry.DefaultFileName, "saved device list")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing apply flags: %w", err)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: apply <payload|->", errMissingArgument)
	}

	cfg.File = *file
	cfg.Payload = fs.Arg(0)

	return nil
}

func subcommands() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		"list":     noArgsHandler{"list"},
		"add":      AddHandler{},
		"edit":     EditHandler{},
		"rm":       indexHandler{"rm"},
		"mv":       MoveHandler{},
		"select":   SelectHandler{},
		"status":   indexHandler{"status"},
		"switch":   SwitchHandler{},
		"slider":   SliderHandler{},
		"update":   indexHandler{"update"},
		"reset":    indexHandler{"reset"},
		"probe":    indexHandler{"probe"},
		"push":     noArgsHandler{"push"},
		"sessions": noArgsHandler{"sessions"},
		"stats":    noArgsHandler{"stats"},
		"export":   ExportHandler{},
		"apply":    ApplyHandler{},
	}
}

// ParseFlags parses global flags, the subcommand and its arguments from args,
// which excludes the program name.
func ParseFlags(args []string) (*CmdConfig, error) {
	fs := flag.NewFlagSet("companion", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	help := fs.Bool("help", false, "show help message")
	showVersion := fs.Bool("version", false, "print the version and exit")
	server := fs.String("server", envOrDefault("COMPANION_SERVER", defaultServer), "companiond base URL")
	apiKey := fs.String("api-key", os.Getenv("COMPANION_API_KEY"), "API key")
	output := fs.String("output", outputTable, "table or json")
	debug := fs.Bool("debug", false, "log local store activity to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := &CmdConfig{
		Help:    *help,
		Version: *showVersion,
		Debug:   *debug,
		Server:  strings.TrimRight(*server, "/"),
		APIKey:  *apiKey,
		Output:  *output,
	}

	if cfg.Output != outputTable && cfg.Output != outputJSON {
		return cfg, fmt.Errorf("%w: %q", errInvalidOutput, cfg.Output)
	}

	if cfg.Help || cfg.Version {
		return cfg, nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return cfg, errMissingCommand
	}

	cfg.SubCmd = rest[0]

	handler, exists := subcommands()[cfg.SubCmd]
	if !exists {
		return cfg, fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
	}

	if err := handler.Parse(rest[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: index %q", errInvalidArgument, s)
	}

	return i, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

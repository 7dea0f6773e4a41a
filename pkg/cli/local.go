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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/carverauto/companion/pkg/logger"
	"github.com/carverauto/companion/pkg/registry"
	devicesync "github.com/carverauto/companion/pkg/sync"
)

const maxPayloadBytes = 1 << 20

func openLocal(ctx context.Context, path string) (*registry.Registry, error) {
	reg := registry.New(registry.NewFileStore(path), logger.Wrap(logger.WithComponent("local")))

	if err := reg.Restore(ctx); err != nil {
		return nil, err
	}

	return reg, nil
}

// runExport prints the payload a surface would push for the list saved at
// cfg.File.
func runExport(ctx context.Context, cfg *CmdConfig, out io.Writer) error {
	reg, err := openLocal(ctx, cfg.File)
	if err != nil {
		return err
	}

	p := devicesync.Export(reg)

	var data []byte

	if cfg.Legacy {
		data = devicesync.EncodeLegacy(p)
	} else if data, err = devicesync.Encode(p); err != nil {
		return err
	}

	_, err = out.Write(data)

	return err
}

// runApply replaces the list saved at cfg.File with a received payload.
func runApply(ctx context.Context, cfg *CmdConfig, stdin io.Reader, p *printer) error {
	data, err := readPayload(cfg.Payload, stdin)
	if err != nil {
		return err
	}

	payload, err := devicesync.Decode(data)
	if err != nil {
		return err
	}

	reg, err := openLocal(ctx, cfg.File)
	if err != nil {
		return err
	}

	if payload.Kind == devicesync.KindNoop {
		p.warn("Empty payload, nothing applied")

		return nil
	}

	if err = payload.ApplyTo(reg); err != nil {
		return err
	}

	if err = reg.Persist(ctx); err != nil {
		return err
	}

	return p.success(fmt.Sprintf("Applied %s with %d devices to %s", payload.Kind, reg.Len(), cfg.File),
		map[string]interface{}{"kind": payload.Kind, "devices": reg.Len()})
}

func readPayload(src string, stdin io.Reader) ([]byte, error) {
	r := stdin

	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("opening payload: %w", err)
		}
		defer func() { _ = f.Close() }()

		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	// a cut-off legacy list would still decode, minus its tail
	if len(data) > maxPayloadBytes {
		return nil, errPayloadTooLarge
	}

	return data, nil
}

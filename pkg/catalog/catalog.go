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
// Package catalog maps device app tags to human-readable names.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Unknown is returned for app codes that are not in the catalog.
const Unknown = "unknown"

var errEmptyCatalog = errors.New("app catalog has no entries")

//go:embed apps.json
var defaultCatalog []byte

// Entry is one catalog record.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type document struct {
	Apps []Entry `json:"apps"`
}

// Catalog is read-only after construction.
type Catalog struct {
	entries []Entry
	byCode  map[string]string
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded app catalog is invalid: %v", err))
	}

	return c
}

// Load reads a catalog document from path. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app catalog '%s': %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a {"apps":[{"code","name"}]} document.
func Parse(data []byte) (*Catalog, error) {
	var doc document

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse app catalog: %w", err)
	}

	if len(doc.Apps) == 0 {
		return nil, errEmptyCatalog
	}

	c := &Catalog{
		entries: doc.Apps,
		byCode:  make(map[string]string, len(doc.Apps)),
	}

	for _, e := range doc.Apps {
		// first entry wins, matching a linear scan of the document
		if _, ok := c.byCode[e.Code]; !ok {
			c.byCode[e.Code] = e.Name
		}
	}

	return c, nil
}

// Name returns the app name for code, or Unknown.
func (c *Catalog) Name(code string) string {
	if name, ok := c.byCode[code]; ok {
		return name
	}

	return Unknown
}

// IconKey is the lower-cased app name, used as the icon and UI key.
func (c *Catalog) IconKey(code string) string {
	return strings.ToLower(c.Name(code))
}

// Entries returns the catalog in document order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

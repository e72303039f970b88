// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bidradar/pkg/types"
)

// CatalogFile is the on-disk feed catalog. A deployment replaces the
// built-in catalog by pointing collect.feeds_file at one of these; the
// optional translation table overrides the portal query terms the same
// way.
type CatalogFile struct {
	Feeds        []types.FeedSource `yaml:"feeds"`
	Translations map[string]string  `yaml:"query_translations,omitempty"`
}

// ReadCatalogFile loads a feed catalog from disk.
func ReadCatalogFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed catalog: %w", err)
	}
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing feed catalog: %w", err)
	}
	if len(cf.Feeds) == 0 {
		return nil, fmt.Errorf("feed catalog %s lists no feeds", path)
	}
	for _, f := range cf.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feed catalog %s: every feed needs a name and a url", path)
		}
	}
	return &cf, nil
}

// WriteCatalogFile saves a feed catalog to a YAML file. Used to seed an
// editable template from the built-in catalog.
func WriteCatalogFile(path string, cf CatalogFile) error {
	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling feed catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultCatalogFile returns the built-in catalog in its on-disk form.
func DefaultCatalogFile() CatalogFile {
	return CatalogFile{
		Feeds:        DefaultFeedCatalog(),
		Translations: defaultQueryTranslations,
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads backend credentials from a directory of plain-text
// files. The filename is the key name and the trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Recognized key files.
const (
	KeyElasticsearchUsername = "elasticsearch-username"
	KeyElasticsearchPassword = "elasticsearch-password"
	KeyElasticsearchAPIKey   = "elasticsearch-api-key"
)

// DefaultDir is where the CLI looks for key files.
const DefaultDir = ".secrets/"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ApplyElasticsearch fills empty credentials in cfg from secrets. Values
// already set by config or environment win.
func ApplyElasticsearch(secrets map[string]string, cfg *types.ElasticsearchConfig) {
	if cfg.Username == "" {
		cfg.Username = secrets[KeyElasticsearchUsername]
	}
	if cfg.Password == "" {
		cfg.Password = secrets[KeyElasticsearchPassword]
	}
	if cfg.APIKey == "" {
		cfg.APIKey = secrets[KeyElasticsearchAPIKey]
	}
}

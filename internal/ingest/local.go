// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// LoadFile reads paper records from a JSON array (.json) or a YAML sequence
// (.yaml, .yml). Every record needs a non-empty id. Embeddings present in
// the file are dropped; they are recomputed at ingestion.
func LoadFile(path string) ([]types.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []types.PaperRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i := range records {
		if strings.TrimSpace(records[i].ID) == "" {
			return nil, fmt.Errorf("parsing %s: record %d has no id", path, i)
		}
		records[i].Embedding = nil
	}
	return records, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DocFailure describes one record the backend (or the local dimension check)
// refused during a bulk upsert.
type DocFailure struct {
	ID     string
	Status int
	Reason string
}

// BulkResult reports the outcome of one bulk request.
type BulkResult struct {
	Indexed  int
	Failures []DocFailure
}

// BulkUpsert writes records in a single _bulk request, each keyed by its id
// so existing documents are overwritten rather than duplicated. Records
// whose embedding does not have the index dimensionality are reported as
// failures without being sent. Per-document rejections are returned in the
// result; only a failure of the request as a whole is an error.
func (c *Client) BulkUpsert(ctx context.Context, records []types.PaperRecord) (BulkResult, error) {
	var result BulkResult
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	sent := 0

	for _, r := range records {
		if r.ID == "" {
			result.Failures = append(result.Failures, DocFailure{Reason: "empty id"})
			continue
		}
		if len(r.Embedding) != c.dims {
			result.Failures = append(result.Failures, DocFailure{
				ID:     r.ID,
				Reason: fmt.Sprintf("embedding has %d dimensions, want %d", len(r.Embedding), c.dims),
			})
			continue
		}
		meta := map[string]any{"index": map[string]any{"_id": r.ID}}
		if err := enc.Encode(meta); err != nil {
			return result, fmt.Errorf("encoding bulk action: %w", err)
		}
		if err := enc.Encode(r); err != nil {
			return result, fmt.Errorf("encoding record %s: %w", r.ID, err)
		}
		sent++
	}

	if sent == 0 {
		return result, nil
	}

	res, err := c.es.Bulk(&buf,
		c.es.Bulk.WithIndex(c.index),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrBulkWrite, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return result, fmt.Errorf("%w: %s", ErrBulkWrite, responseError(res))
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return result, fmt.Errorf("%w: parsing bulk response: %v", ErrBulkWrite, err)
	}

	for _, item := range br.Items {
		for _, op := range item {
			if op.Error != nil || op.Status >= 300 {
				f := DocFailure{ID: op.ID, Status: op.Status}
				if op.Error != nil {
					f.Reason = op.Error.Type + ": " + op.Error.Reason
				}
				result.Failures = append(result.Failures, f)
				continue
			}
			result.Indexed++
		}
	}
	return result, nil
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/pkg/types"
)

func records(n int) []types.PaperRecord {
	out := make([]types.PaperRecord, n)
	for i := range out {
		out[i] = types.PaperRecord{
			ID:        fmt.Sprintf("paper-%03d", i),
			Title:     fmt.Sprintf("Paper %d", i),
			Abstract:  "abstract",
			Year:      2024,
			Embedding: vector(float32(i)),
		}
	}
	return out
}

func TestBulkUpsert_IndexesAll(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.RecreateIndex(ctx, &bytes.Buffer{}))

	res, err := c.BulkUpsert(ctx, records(25))
	require.NoError(t, err)

	assert.Equal(t, 25, res.Indexed)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 25, srv.Docs("papers_test"))
	assert.Equal(t, 1, srv.Count("POST _bulk"))
}

func TestBulkUpsert_OverwritesSameID(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.RecreateIndex(ctx, &bytes.Buffer{}))

	_, err := c.BulkUpsert(ctx, records(10))
	require.NoError(t, err)

	again := records(10)
	again[0].Title = "Revised"
	res, err := c.BulkUpsert(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Indexed)
	assert.Equal(t, 10, srv.Docs("papers_test"))
	got, err := c.Get(ctx, "paper-000")
	require.NoError(t, err)
	assert.Equal(t, "Revised", got.Title)
}

func TestBulkUpsert_PerDocumentFailures(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.RecreateIndex(ctx, &bytes.Buffer{}))
	srv.RejectIDs["paper-002"] = true

	recs := records(5)
	recs[4].Embedding = recs[4].Embedding[:10]

	res, err := c.BulkUpsert(ctx, recs)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Indexed)
	require.Len(t, res.Failures, 2)
	ids := []string{res.Failures[0].ID, res.Failures[1].ID}
	assert.ElementsMatch(t, []string{"paper-002", "paper-004"}, ids)
	assert.Equal(t, 3, srv.Docs("papers_test"))
}

func TestBulkUpsert_NothingToSend(t *testing.T) {
	c, srv := newTestClient(t)

	res, err := c.BulkUpsert(context.Background(), []types.PaperRecord{{ID: "no-vector"}})
	require.NoError(t, err)

	assert.Zero(t, res.Indexed)
	assert.Len(t, res.Failures, 1)
	assert.Zero(t, srv.Count("POST _bulk"))
}

func TestBulkUpsert_RequestFailure(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Close()

	_, err := c.BulkUpsert(context.Background(), records(2))
	assert.ErrorIs(t, err, ErrBulkWrite)
}

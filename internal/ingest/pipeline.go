// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest attaches embeddings to paper records and writes them to the
// index in fixed-size batches. Both ingestion paths (arXiv and local files)
// end in Pipeline.Run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultBatchSize is the number of records flushed per bulk request.
const DefaultBatchSize = 100

// Writer upserts a batch of records that already carry embeddings.
type Writer interface {
	BulkUpsert(ctx context.Context, records []types.PaperRecord) (index.BulkResult, error)
}

// Pipeline embeds records one at a time and flushes them in batches.
type Pipeline struct {
	Embedder  embedding.Provider
	Writer    Writer
	BatchSize int
}

// Summary reports the outcome of a run.
type Summary struct {
	Total    int
	Indexed  int
	Failed   int
	Batches  int
	Failures []index.DocFailure
}

// Run embeds each record's abstract and writes the records in batches of
// BatchSize, flushing the final partial batch. Rejected documents and failed
// batches are reported on w and counted, and the run moves on to the next
// batch. An embedding failure or a cancelled context stops the run.
func (p *Pipeline) Run(ctx context.Context, records []types.PaperRecord, w io.Writer) (Summary, error) {
	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	sum := Summary{Total: len(records)}
	batch := make([]types.PaperRecord, 0, size)

	for i, rec := range records {
		emb, err := p.Embedder.Embed(ctx, rec.Abstract)
		if err != nil {
			return sum, fmt.Errorf("embedding %s: %w", rec.ID, err)
		}
		rec.Embedding = emb.Vector
		batch = append(batch, rec)

		if len(batch) == size || i == len(records)-1 {
			if err := p.flush(ctx, batch, &sum, w); err != nil {
				return sum, err
			}
			fmt.Fprintf(w, "Indexed %d papers.\n", i+1)
			batch = batch[:0]
		}
	}

	fmt.Fprintf(w, "Total papers indexed: %d", sum.Indexed)
	if sum.Failed > 0 {
		fmt.Fprintf(w, " (%d failed)", sum.Failed)
	}
	fmt.Fprintln(w)
	return sum, nil
}

func (p *Pipeline) flush(ctx context.Context, batch []types.PaperRecord, sum *Summary, w io.Writer) error {
	sum.Batches++
	res, err := p.Writer.BulkUpsert(ctx, batch)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, index.ErrBulkWrite) {
			return err
		}
		fmt.Fprintf(w, "warning: batch %d failed: %v\n", sum.Batches, err)
		sum.Failed += len(batch)
		for _, r := range batch {
			sum.Failures = append(sum.Failures, index.DocFailure{ID: r.ID, Reason: err.Error()})
		}
		return nil
	}

	sum.Indexed += res.Indexed
	sum.Failed += len(res.Failures)
	for _, f := range res.Failures {
		fmt.Fprintf(w, "warning: document %s rejected: %s\n", f.ID, f.Reason)
	}
	sum.Failures = append(sum.Failures, res.Failures...)
	return nil
}

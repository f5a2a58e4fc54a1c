package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"infograph/internal/domain"
	"infograph/internal/port"
	"infograph/internal/repair"
	"infograph/internal/vision"
)

// ExtractionFailedError is returned when every planned item failed. Partial
// failure is not an error at this level; it surfaces as warnings instead.
type ExtractionFailedError struct {
	Failures []domain.ItemFailure
	Err      error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("extraction failed for all %d items: %v", len(e.Failures), e.Err)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Err
}

// ExecutionResult is the outcome of one extraction run: the datasets that
// succeeded plus a failure record for every item that did not.
type ExecutionResult struct {
	Datasets []domain.Dataset
	Failures []domain.ItemFailure
}

// Executor runs the extract phase of a plan. Each planned item gets its own
// model call with its own retry budget, so one stubborn element cannot sink
// the rest of the run.
type Executor struct {
	model port.VisionModel
	retry RetryPolicy
	now   func() time.Time
}

// NewExecutor creates an Executor with the given model and retry policy.
func NewExecutor(model port.VisionModel, retry RetryPolicy) *Executor {
	return &Executor{model: model, retry: retry, now: time.Now}
}

// extractionReply is the loose shape the model replies with for one item.
// Some models wrap the payload in an "extractions" array even when asked
// for a single object, so that shape is accepted too.
type extractionReply struct {
	ItemID      string            `json:"item_id"`
	Title       string            `json:"title"`
	Columns     []string          `json:"columns"`
	Rows        []map[string]any  `json:"rows"`
	Confidence  *float64          `json:"confidence"`
	Notes       string            `json:"notes"`
	Extractions []extractionReply `json:"extractions"`
}

// Execute runs every planned item in order. A cancelled context stops the
// run between items; failures within an item are retried per the policy and
// then recorded. The run as a whole errors only when nothing succeeded.
func (e *Executor) Execute(ctx context.Context, image *port.PageImage, plan *ExtractionPlan, opts domain.ExtractionOptions) (*ExecutionResult, error) {
	result := &ExecutionResult{
		Datasets: make([]domain.Dataset, 0, len(plan.Items)),
		Failures: []domain.ItemFailure{},
	}

	var lastErr error
	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ds, attempts, err := e.extractItem(ctx, image, plan, item, opts)
		if err != nil {
			log.Printf("executor.Execute: item %s failed after %d attempts: %v", item.ItemID, attempts, err)
			result.Failures = append(result.Failures, domain.ItemFailure{
				ItemID:   item.ItemID,
				Attempts: attempts,
				Error:    err.Error(),
			})
			lastErr = err
			continue
		}
		result.Datasets = append(result.Datasets, *ds)
	}

	if len(result.Datasets) == 0 && len(result.Failures) > 0 {
		return nil, &ExtractionFailedError{Failures: result.Failures, Err: lastErr}
	}

	if opts.MergeDatasets && len(result.Datasets) > 1 {
		merged := e.mergeDatasets(result.Datasets, plan)
		result.Datasets = []domain.Dataset{merged}
	}

	return result, nil
}

func (e *Executor) extractItem(ctx context.Context, image *port.PageImage, plan *ExtractionPlan, item domain.PlannedItem, opts domain.ExtractionOptions) (*domain.Dataset, int, error) {
	prompt := vision.BuildExtractionPrompt(item, opts)

	var ds *domain.Dataset
	attempts, err := e.retry.Run(ctx, func(attempt int) error {
		if attempt > 1 {
			log.Printf("executor.extractItem: retrying item %s (attempt %d)", item.ItemID, attempt)
		}
		raw, err := e.model.Complete(ctx, port.CompletionInput{
			Prompt:      prompt,
			Image:       image.Data,
			ContentType: image.ContentType,
		})
		if err != nil {
			return err
		}

		var reply extractionReply
		if err := repair.Decode(raw, &reply); err != nil {
			return err
		}

		built, err := e.projectDataset(reply, plan, item, opts)
		if err != nil {
			return err
		}
		ds = built
		return nil
	})
	if err != nil {
		return nil, attempts, err
	}
	return ds, attempts, nil
}

// projectDataset shapes a model reply into a Dataset for the planned item.
func (e *Executor) projectDataset(reply extractionReply, plan *ExtractionPlan, item domain.PlannedItem, opts domain.ExtractionOptions) (*domain.Dataset, error) {
	payload := pickReply(reply, item.ItemID)
	if len(payload.Rows) == 0 {
		return nil, fmt.Errorf("model returned no rows for item %s", item.ItemID)
	}

	columns, rows := normalizeTable(payload.Columns, payload.Rows, opts.Granularity)

	title := payload.Title
	if title == "" {
		title = item.Title
	}

	confidence := 0.8
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}

	bbox := item.BoundingBox
	ts := e.now().UTC()
	return &domain.Dataset{
		ID:           newID("ds"),
		SourceItemID: item.ItemID,
		FileID:       plan.Identification.Source.FileID,
		Page:         plan.Identification.Source.Page,
		Title:        title,
		Kind:         item.Kind,
		Columns:      columns,
		Rows:         rows,
		Metadata: domain.DatasetMetadata{
			SourceBoundingBox: &bbox,
			Confidence:        confidence,
			Notes:             payload.Notes,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// pickReply unwraps an "extractions"-style reply, preferring the entry that
// names the requested item.
func pickReply(reply extractionReply, itemID string) extractionReply {
	if len(reply.Rows) > 0 || len(reply.Extractions) == 0 {
		return reply
	}
	for _, sub := range reply.Extractions {
		if sub.ItemID == itemID {
			return sub
		}
	}
	return reply.Extractions[0]
}

// normalizeTable makes the row set rectangular: every row carries every
// column, missing cells become empty strings, and the source column is
// present exactly when the granularity demands it.
func normalizeTable(declared []string, rawRows []map[string]any, granularity domain.Granularity) ([]string, []domain.Row) {
	wantSource := granularity == domain.GranularityFullWithSource

	columns := make([]string, 0, len(declared))
	seen := make(map[string]bool, len(declared))
	add := func(col string) {
		if col == "" || seen[col] {
			return
		}
		seen[col] = true
		columns = append(columns, col)
	}
	for _, col := range declared {
		add(col)
	}
	// Models sometimes emit row keys never declared in "columns".
	for _, raw := range rawRows {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k)
		}
	}

	if wantSource {
		add(domain.SourceColumn)
	} else if seen[domain.SourceColumn] {
		filtered := columns[:0]
		for _, col := range columns {
			if col != domain.SourceColumn {
				filtered = append(filtered, col)
			}
		}
		columns = filtered
	}

	rows := make([]domain.Row, 0, len(rawRows))
	for _, raw := range rawRows {
		row := make(domain.Row, len(columns))
		for _, col := range columns {
			val, ok := raw[col]
			if !ok || val == nil {
				val = ""
			}
			row[col] = val
		}
		if wantSource {
			row[domain.SourceColumn] = normalizeSource(raw[domain.SourceColumn])
		}
		rows = append(rows, row)
	}
	return columns, rows
}

// normalizeSource coerces a source cell to exactly "annotated" or
// "estimated", defaulting to estimated when the model said anything else.
func normalizeSource(val any) string {
	s, _ := val.(string)
	if strings.EqualFold(strings.TrimSpace(s), domain.SourceAnnotated) {
		return domain.SourceAnnotated
	}
	return domain.SourceEstimated
}

// mergeDatasets folds per-item datasets into one table, tagging each row
// with the dataset it came from. The merged dataset carries no source item
// because it came from all of them.
func (e *Executor) mergeDatasets(datasets []domain.Dataset, plan *ExtractionPlan) domain.Dataset {
	columns := []string{"Source", "Category"}
	seen := map[string]bool{"Source": true, "Category": true}
	for _, ds := range datasets {
		for _, col := range ds.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	var rows []domain.Row
	var confidenceSum float64
	for _, ds := range datasets {
		confidenceSum += ds.Metadata.Confidence
		label := ds.Title
		if label == "" {
			label = ds.SourceItemID
		}
		for _, src := range ds.Rows {
			row := make(domain.Row, len(columns))
			for _, col := range columns {
				val, ok := src[col]
				if !ok || val == nil {
					val = ""
				}
				row[col] = val
			}
			row["Source"] = label
			row["Category"] = string(ds.Kind)
			rows = append(rows, row)
		}
	}

	ts := e.now().UTC()
	return domain.Dataset{
		ID:      newID("ds"),
		FileID:  plan.Identification.Source.FileID,
		Page:    plan.Identification.Source.Page,
		Title:   "Merged extraction",
		Kind:    domain.ElementOther,
		Columns: columns,
		Rows:    rows,
		Metadata: domain.DatasetMetadata{
			Confidence: confidenceSum / float64(len(datasets)),
			Notes:      fmt.Sprintf("Merged from %d extracted elements", len(datasets)),
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

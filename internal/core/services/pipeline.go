package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure RowPipeline implements the interfaces.
var (
	_ driving.Enricher  = (*RowPipeline)(nil)
	_ driving.Previewer = (*RowPipeline)(nil)
)

// estimatedCallTime approximates one search plus one extraction round trip.
const estimatedCallTime = time.Second

// RowPipeline turns a table, a subject column and a query template into a
// results table by searching and extracting once per non-empty row.
type RowPipeline struct {
	search    driven.SearchProvider
	extractor driven.Extractor
	limiter   driven.RateLimiter
	policy    domain.FailurePolicy
	interval  time.Duration
	now       func() time.Time
}

// NewRowPipeline creates a row pipeline.
// The limiter is optional; without it searches are not paced.
func NewRowPipeline(
	search driven.SearchProvider,
	extractor driven.Extractor,
	limiter driven.RateLimiter,
	settings domain.PipelineSettings,
) *RowPipeline {
	policy := settings.FailurePolicy
	if !policy.IsValid() {
		policy = domain.FailureDrop
	}
	return &RowPipeline{
		search:    search,
		extractor: extractor,
		limiter:   limiter,
		policy:    policy,
		interval:  settings.Interval(),
		now:       time.Now,
	}
}

// Run processes every row of req.Table in order.
//
//nolint:gocognit // Sequential orchestration with per-row recovery
func (p *RowPipeline) Run(
	ctx context.Context, req driving.RunRequest, onProgress driving.ProgressFunc,
) (*domain.RunResult, error) {
	values, err := p.validate(req)
	if err != nil {
		return nil, err
	}

	logger.Section("Row Pipeline")
	logger.Debug("Subject column: %q, template: %q, rows: %d, policy: %s",
		req.SubjectColumn, req.Template, len(values), p.policy)
	if !domain.HasPlaceholder(req.Template, req.SubjectColumn) {
		logger.Warn("Template has no %s placeholder; every row will run the same query",
			domain.Placeholder(req.SubjectColumn))
	}

	result := &domain.RunResult{
		ID:            uuid.NewString(),
		SubjectColumn: req.SubjectColumn,
		Template:      req.Template,
		Total:         len(values),
		StartedAt:     p.now(),
	}
	table := domain.NewResultsTable()

	for i, cell := range values {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		record, rowErr, cancelled := p.processRow(ctx, i, cell, req, result)
		if cancelled {
			result.Cancelled = true
			break
		}
		if record != nil {
			if err := table.Append(*record); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}

		result.Processed = i + 1
		if rowErr != nil {
			result.Warnings = append(result.Warnings, *rowErr)
		}
		if onProgress != nil {
			progress := driving.Progress{Done: i + 1, Total: len(values), Value: cell.String()}
			if rowErr != nil {
				progress.Err = rowErr
			}
			onProgress(progress)
		}
	}

	table.Freeze()
	result.Results = table
	result.FinishedAt = p.now()

	logger.Info("Run %s: %d/%d rows visited, %d records, %d warnings, cancelled=%t",
		result.ID, result.Processed, result.Total, table.Len(), len(result.Warnings), result.Cancelled)
	return result, nil
}

// processRow handles one row. It returns the record to keep (nil when the
// row is dropped), the row's recoverable failure, and whether the run was
// cancelled while the row was in flight.
func (p *RowPipeline) processRow(
	ctx context.Context,
	index int,
	cell domain.Cell,
	req driving.RunRequest,
	result *domain.RunResult,
) (*domain.ResultRecord, *domain.RowError, bool) {
	na := &domain.ResultRecord{InputValue: cell, Result: domain.ResultNA}

	if cell.IsBlank() {
		logger.Debug("Row %d: blank subject, recording %s", index+1, domain.ResultNA)
		return na, nil, false
	}

	value := cell.String()
	query := domain.Fill(req.Template, req.SubjectColumn, value)
	logger.Debug("Row %d: query %q", index+1, query)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			logger.Debug("Row %d: limiter wait aborted: %v", index+1, err)
			return nil, nil, true
		}
	}

	result.Searches++
	entries, err := p.search.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, true
		}
		rowErr := &domain.RowError{Index: index, Value: value, Stage: domain.StageSearch, Err: asSearchError(err)}
		logger.Warn("%v", rowErr)
		if p.policy == domain.FailureNA {
			return na, rowErr, false
		}
		return nil, rowErr, false
	}
	logger.Debug("Row %d: %d search results", index+1, len(entries))

	answer, err := p.extractor.Extract(ctx, entries, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, true
		}
		rowErr := &domain.RowError{Index: index, Value: value, Stage: domain.StageExtract, Err: asExtractionError(err)}
		logger.Warn("%v", rowErr)
		return na, rowErr, false
	}

	return &domain.ResultRecord{InputValue: cell, Result: answer}, nil, false
}

// Estimate counts the calls a run will make and how long they should take.
func (p *RowPipeline) Estimate(req driving.RunRequest) (*driving.Estimate, error) {
	values, err := p.validate(req)
	if err != nil {
		return nil, err
	}

	queries := 0
	for _, v := range values {
		if !v.IsBlank() {
			queries++
		}
	}

	return &driving.Estimate{
		Rows:     len(values),
		Queries:  queries,
		Duration: time.Duration(queries) * (p.interval + estimatedCallTime),
	}, nil
}

// Preview fills the template for the first n rows without calling out.
func (p *RowPipeline) Preview(req driving.RunRequest, n int) ([]string, error) {
	values, err := p.validate(req)
	if err != nil {
		return nil, err
	}
	if n > len(values) {
		n = len(values)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		if values[i].IsBlank() {
			continue
		}
		out[i] = domain.Fill(req.Template, req.SubjectColumn, values[i].String())
	}
	return out, nil
}

func (p *RowPipeline) validate(req driving.RunRequest) ([]domain.Cell, error) {
	if req.Table == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceAccess, domain.ErrEmptyTable)
	}
	if strings.TrimSpace(req.Template) == "" {
		return nil, fmt.Errorf("%w: query template is empty", domain.ErrInvalidInput)
	}
	values, err := req.Table.Values(req.SubjectColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return values, nil
}

func asSearchError(err error) error {
	if errors.Is(err, domain.ErrSearch) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSearch, err)
}

func asExtractionError(err error) error {
	if errors.Is(err, domain.ErrExtraction) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
}

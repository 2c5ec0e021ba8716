package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
)

func newTestPipeline(policy domain.FailurePolicy) (*RowPipeline, *mockSearch, *mockExtractor, *mockLimiter) {
	search := &mockSearch{}
	extractor := &mockExtractor{}
	limiter := &mockLimiter{}
	p := NewRowPipeline(search, extractor, limiter, domain.PipelineSettings{
		RequestsPerSecond: 1,
		Burst:             1,
		FailurePolicy:     policy,
	})
	return p, search, extractor, limiter
}

func TestRowPipeline_EndToEnd(t *testing.T) {
	p, search, extractor, limiter := newTestPipeline(domain.FailureDrop)
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme", "", "Globex"),
		SubjectColumn: "name",
		Template:      "Contact email for {name}",
	}

	var progress []driving.Progress
	res, err := p.Run(context.Background(), req, func(pr driving.Progress) {
		progress = append(progress, pr)
	})

	require.NoError(t, err)
	want := []domain.ResultRecord{
		{InputValue: domain.TextCell("Acme"), Result: "answer:Acme"},
		{InputValue: domain.TextCell(""), Result: "NA"},
		{InputValue: domain.TextCell("Globex"), Result: "answer:Globex"},
	}
	if diff := cmp.Diff(want, res.Results.Records()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Contact email for Acme", "Contact email for Globex"}, search.queries)
	assert.Equal(t, search.queries, extractor.calls)
	assert.Equal(t, 2, limiter.waits)
	assert.Equal(t, 2, res.Searches)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Processed)
	assert.True(t, res.Results.Frozen())
	assert.True(t, res.Aligned())
	assert.False(t, res.Cancelled)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "name", res.SubjectColumn)

	require.Len(t, progress, 3)
	for i, pr := range progress {
		assert.Equal(t, i+1, pr.Done)
		assert.Equal(t, 3, pr.Total)
	}
	assert.Equal(t, 1.0, progress[2].Fraction())
}

func TestRowPipeline_BlankSubjectsMakeNoCalls(t *testing.T) {
	p, search, extractor, limiter := newTestPipeline(domain.FailureDrop)
	req := driving.RunRequest{
		Table:         mustTable("name", "", "   ", "<nil>", "\t"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Empty(t, search.queries)
	assert.Empty(t, extractor.calls)
	assert.Zero(t, limiter.waits)
	assert.Equal(t, []string{"NA", "NA", "NA", "NA"}, res.Results.Results())
	assert.True(t, res.Results.Records()[2].InputValue.Null, "raw null value is preserved")
}

func TestRowPipeline_OrderPreserved(t *testing.T) {
	p, _, _, _ := newTestPipeline(domain.FailureDrop)
	names := []string{"Zeta", "Alpha", "Mu", "Beta", "Omega"}
	req := driving.RunRequest{
		Table:         mustTable("company", names...),
		SubjectColumn: "company",
		Template:      "HQ of {company}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	require.Equal(t, len(names), res.Results.Len())
	for i, r := range res.Results.Records() {
		assert.Equal(t, names[i], r.InputValue.String())
	}
}

func TestRowPipeline_SearchFailureDropsRow(t *testing.T) {
	p, search, extractor, limiter := newTestPipeline(domain.FailureDrop)
	search.fail = map[string]error{"About Globex": errBoom}
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme", "Globex", "Initech"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	var progress []driving.Progress
	res, err := p.Run(context.Background(), req, func(pr driving.Progress) {
		progress = append(progress, pr)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Results.Len())
	assert.Equal(t, []string{"answer:Acme", "answer:Initech"}, res.Results.Results())
	assert.Equal(t, 1, res.Dropped())
	assert.False(t, res.Aligned())
	assert.NotContains(t, extractor.calls, "About Globex")
	assert.Equal(t, 3, limiter.waits, "pacing applies to failed searches too")

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, 1, w.Index)
	assert.Equal(t, "Globex", w.Value)
	assert.Equal(t, domain.StageSearch, w.Stage)
	assert.ErrorIs(t, w, domain.ErrSearch)
	assert.ErrorIs(t, w, errBoom)

	require.Len(t, progress, 3, "progress is emitted for failed rows")
	assert.Error(t, progress[1].Err)
	assert.NoError(t, progress[2].Err)
}

func TestRowPipeline_SearchFailureRecordsNAUnderNAPolicy(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureNA)
	search.fail = map[string]error{"About Globex": errBoom}
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme", "Globex"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"answer:Acme", "NA"}, res.Results.Results())
	assert.True(t, res.Aligned())
	assert.Len(t, res.Warnings, 1)
}

func TestRowPipeline_ExtractionFailureRecordsNA(t *testing.T) {
	p, _, extractor, _ := newTestPipeline(domain.FailureDrop)
	extractor.fail = map[string]error{"About Acme": fmt.Errorf("%w: 401", domain.ErrExtraction)}
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme", "Globex"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"NA", "answer:Globex"}, res.Results.Results())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.StageExtract, res.Warnings[0].Stage)
	assert.ErrorIs(t, res.Warnings[0], domain.ErrExtraction)
}

func TestRowPipeline_ProcessRowRecords(t *testing.T) {
	tests := []struct {
		name       string
		policy     domain.FailurePolicy
		cell       domain.Cell
		searchErr  error
		extractErr error
		want       *domain.ResultRecord
		wantStage  domain.Stage
	}{
		{
			name:   "blank subject",
			policy: domain.FailureDrop,
			cell:   domain.NullCell(),
			want:   &domain.ResultRecord{InputValue: domain.NullCell(), Result: domain.ResultNA},
		},
		{
			name:   "answered",
			policy: domain.FailureDrop,
			cell:   domain.TextCell("Acme"),
			want:   &domain.ResultRecord{InputValue: domain.TextCell("Acme"), Result: "answer:Acme"},
		},
		{
			name:      "search failure dropped",
			policy:    domain.FailureDrop,
			cell:      domain.TextCell("Acme"),
			searchErr: errBoom,
			wantStage: domain.StageSearch,
		},
		{
			name:      "search failure kept as NA",
			policy:    domain.FailureNA,
			cell:      domain.TextCell("Acme"),
			searchErr: errBoom,
			want:      &domain.ResultRecord{InputValue: domain.TextCell("Acme"), Result: domain.ResultNA},
			wantStage: domain.StageSearch,
		},
		{
			name:       "extraction failure",
			policy:     domain.FailureDrop,
			cell:       domain.TextCell("Acme"),
			extractErr: domain.ErrExtraction,
			want:       &domain.ResultRecord{InputValue: domain.TextCell("Acme"), Result: domain.ResultNA},
			wantStage:  domain.StageExtract,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, search, extractor, _ := newTestPipeline(tt.policy)
			if tt.searchErr != nil {
				search.fail = map[string]error{"About Acme": tt.searchErr}
			}
			if tt.extractErr != nil {
				extractor.fail = map[string]error{"About Acme": tt.extractErr}
			}
			req := driving.RunRequest{SubjectColumn: "name", Template: "About {name}"}

			record, rowErr, cancelled := p.processRow(context.Background(), 0, tt.cell, req, &domain.RunResult{})

			assert.False(t, cancelled)
			assert.Equal(t, tt.want, record)
			if tt.wantStage == "" {
				assert.Nil(t, rowErr)
			} else {
				require.NotNil(t, rowErr)
				assert.Equal(t, tt.wantStage, rowErr.Stage)
			}
		})
	}
}

func TestRowPipeline_AllRowsFail(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureDrop)
	search.fail = map[string]error{"About A": errBoom, "About B": errBoom}
	req := driving.RunRequest{
		Table:         mustTable("name", "A", "B"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Zero(t, res.Results.Len())
	assert.Equal(t, 2, res.Processed)
	assert.Len(t, res.Warnings, 2)
}

func TestRowPipeline_EmptySearchResults(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureDrop)
	search.results = []domain.SearchEntry{}
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{domain.ResultNotFound}, res.Results.Results())
}

func TestRowPipeline_CancelBetweenRows(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureDrop)
	req := driving.RunRequest{
		Table:         mustTable("name", "A", "B", "C"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := p.Run(ctx, req, func(pr driving.Progress) {
		if pr.Done == 1 {
			cancel()
		}
	})

	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, []string{"answer:A"}, res.Results.Results())
	assert.Equal(t, []string{"About A"}, search.queries)
	assert.True(t, res.Results.Frozen())
	assert.False(t, res.Aligned())
}

func TestRowPipeline_CancelDuringLimiterWait(t *testing.T) {
	p, search, _, limiter := newTestPipeline(domain.FailureDrop)
	limiter.err = context.Canceled
	req := driving.RunRequest{
		Table:         mustTable("name", "A"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Zero(t, res.Processed)
	assert.Empty(t, search.queries)
}

func TestRowPipeline_WithoutLimiter(t *testing.T) {
	search := &mockSearch{}
	p := NewRowPipeline(search, &mockExtractor{}, nil, domain.PipelineSettings{})
	req := driving.RunRequest{
		Table:         mustTable("name", "A"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	res, err := p.Run(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Results.Len())
	assert.Equal(t, domain.FailureDrop, p.policy)
}

func TestRowPipeline_InvalidRequests(t *testing.T) {
	p, _, _, _ := newTestPipeline(domain.FailureDrop)
	table := mustTable("name", "A")

	tests := []struct {
		name    string
		req     driving.RunRequest
		wantErr error
	}{
		{"nil table", driving.RunRequest{SubjectColumn: "name", Template: "{name}"}, domain.ErrSourceAccess},
		{"missing column", driving.RunRequest{Table: table, SubjectColumn: "email", Template: "{email}"}, domain.ErrColumnNotFound},
		{"empty template", driving.RunRequest{Table: table, SubjectColumn: "name", Template: "  "}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Run(context.Background(), tt.req, nil)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRowPipeline_Estimate(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureDrop)
	req := driving.RunRequest{
		Table:         mustTable("name", "A", "", "C", "<nil>"),
		SubjectColumn: "name",
		Template:      "About {name}",
	}

	est, err := p.Estimate(req)

	require.NoError(t, err)
	assert.Equal(t, 4, est.Rows)
	assert.Equal(t, 2, est.Queries)
	assert.Equal(t, 4*time.Second, est.Duration)
	assert.Empty(t, search.queries)
}

func TestRowPipeline_Preview(t *testing.T) {
	p, search, _, _ := newTestPipeline(domain.FailureDrop)
	req := driving.RunRequest{
		Table:         mustTable("name", "Acme", "", "Globex"),
		SubjectColumn: "name",
		Template:      "Who founded {name}?",
	}

	got, err := p.Preview(req, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"Who founded Acme?", "", "Who founded Globex?"}, got)
	assert.Empty(t, search.queries)
}

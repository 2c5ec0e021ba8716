// Package messages defines Bubbletea message types for the progress view.
package messages

import (
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
)

// RowDone is sent after the pipeline visits a row.
type RowDone struct {
	Progress driving.Progress
}

// RunFinished is sent once the pipeline returns.
type RunFinished struct {
	Result *domain.RunResult
	Err    error
}

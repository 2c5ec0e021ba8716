package driven

import (
	"context"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// SheetGateway reads from and writes to a remote spreadsheet.
// Credentials are loaded once at construction and reused for every call.
type SheetGateway interface {
	// ListTabs returns the tab titles of a spreadsheet in display order.
	// Fails with domain.ErrNotFound when the spreadsheet does not exist and
	// domain.ErrPermissionDenied when it is not shared with the credential.
	ListTabs(ctx context.Context, spreadsheetID string) ([]string, error)

	// ReadTab loads a tab as a table. The first row is the header.
	// Fails with domain.ErrNotFound when the tab does not exist.
	ReadTab(ctx context.Context, spreadsheetID, tab string) (*domain.InputTable, error)

	// AppendColumn writes header into row 1 of the first unused column and
	// values beneath it in order.
	AppendColumn(ctx context.Context, spreadsheetID, tab, header string, values []string) error
}

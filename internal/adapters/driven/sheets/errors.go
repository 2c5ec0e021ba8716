package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// retryAfterSeconds extracts a Retry-After hint from a Google API error.
func retryAfterSeconds(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Header != nil {
		return gerr.Header.Get("Retry-After")
	}
	return ""
}

// wrapError converts a Google API error into a domain error whose message
// tells the user what to fix. account is the service account e-mail.
func wrapError(err error, account, tab string) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: google sheets: %w", domain.ErrSourceAccess, err)
	}

	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: spreadsheet not found. Please verify:\n"+
			"1. The spreadsheet ID is correct\n"+
			"2. The sheet is shared with %s\n"+
			"3. Sharing permissions allow edit access", domain.ErrNotFound, account)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("%w: permission denied. Please share the spreadsheet with %s "+
			"and ensure it has edit access", domain.ErrPermissionDenied, account)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: google sheets: %s", domain.ErrRateLimited, gerr.Message)
	case http.StatusBadRequest:
		if tab != "" && strings.Contains(gerr.Message, "Unable to parse range") {
			return fmt.Errorf("%w: worksheet %q not found in the spreadsheet", domain.ErrNotFound, tab)
		}
	}
	return fmt.Errorf("%w: Google Sheets API error: %w", domain.ErrSourceAccess, err)
}

// Package sheets provides a Google Sheets gateway authenticated with a
// service account.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// unknownAccount is used in messages when the key has no client_email.
const unknownAccount = "the service account"

// Credentials is a loaded service account key.
type Credentials struct {
	creds *google.Credentials
	email string
}

// Email returns the service account address the spreadsheet must be shared with.
func (c *Credentials) Email() string {
	if c.email == "" {
		return unknownAccount
	}
	return c.email
}

// LoadCredentials reads a service account JSON key scoped to spreadsheets.
func LoadCredentials(ctx context.Context, path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s file not found. Create a service account key and save it there", domain.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: read credentials: %w", domain.ErrConfiguration, err)
	}
	return ParseCredentials(ctx, data)
}

// ParseCredentials parses a service account JSON key.
func ParseCredentials(ctx context.Context, data []byte) (*Credentials, error) {
	var key struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("%w: credentials are not valid JSON: %w", domain.ErrConfiguration, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: error setting up Google Sheets client: %w", domain.ErrConfiguration, err)
	}

	return &Credentials{creds: creds, email: key.ClientEmail}, nil
}

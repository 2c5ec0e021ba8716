// Package env resolves secrets from the process environment and .env files.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure SecretSource implements the interface.
var _ driven.SecretSource = (*SecretSource)(nil)

// DefaultFile is the dotenv file read from the working directory.
const DefaultFile = ".env"

// SecretSource looks up secrets in the environment first, then in values
// read from dotenv files. Dotenv values never modify the process environment.
type SecretSource struct {
	dotenv map[string]string
	lookup func(string) (string, bool)
}

// NewSecretSource reads the given dotenv files. Missing files are skipped;
// later files do not override earlier ones.
func NewSecretSource(files ...string) (*SecretSource, error) {
	values := make(map[string]string)

	for _, file := range files {
		read, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		logger.Debug("Loaded %d entries from %s", len(read), file)
		for k, v := range read {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	return &SecretSource{dotenv: values, lookup: os.LookupEnv}, nil
}

// Lookup returns the named secret and whether it is set and non-empty.
func (s *SecretSource) Lookup(name string) (string, bool) {
	if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	if v, ok := s.dotenv[name]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return "", false
}

// Source names where a secret was found: "env", "file" or "" when unset.
func (s *SecretSource) Source(name string) string {
	if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
		return "env"
	}
	if v, ok := s.dotenv[name]; ok && strings.TrimSpace(v) != "" {
		return "file"
	}
	return ""
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials for remote reference tables from a
// directory of plain-text files. The filename is the key; the trimmed
// contents are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DataSourceToken is the key of the bearer token sent when fetching
// reference tables over HTTP.
const DataSourceToken = "data-source-token"

// Load reads every file in dir. A missing directory yields an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, log *slog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

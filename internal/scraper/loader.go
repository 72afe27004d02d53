package scraper

import (
	"embed"
	"log/slog"
)

//go:embed selectors.json
var embeddedSelectors embed.FS

// LoadConfig tries to load selectors in the following order:
// 1. External file at path, when path is set (an unreadable file is an error)
// 2. Embedded selectors.json
// 3. Hardcoded defaults
func LoadConfig(path string) (SelectorConfig, error) {
	// 1. Explicit override
	if path != "" {
		sel, err := LoadSelectors(path)
		if err != nil {
			return SelectorConfig{}, err
		}
		slog.Info("Loaded selectors from external file", "path", path)
		return sel, nil
	}

	// 2. Try embedded
	data, err := embeddedSelectors.ReadFile("selectors.json")
	if err == nil {
		sel, parseErr := LoadSelectorsFromBytes(data)
		if parseErr == nil {
			slog.Debug("Loaded selectors from embedded config.")
			return sel, nil
		}
		slog.Warn("Embedded selectors failed to parse. Using defaults.", "error", parseErr)
	}

	// 3. Fallback to hardcoded defaults
	slog.Info("Using hardcoded default selectors")
	return DefaultSelectors(), nil
}

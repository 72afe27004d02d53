package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

type SelectorConfig struct {
	Origin        string           `json:"origin"`         // resolves relative ad links
	BlockedTitles []string         `json:"blocked_titles"` // bot challenge <title> signatures
	Listing       ListingSelectors `json:"listing"`
}

type ListingSelectors struct {
	// Items is tried in order; the first selector matching at least one node wins.
	Items    []string        `json:"items"`
	Elements ListingElements `json:"elements"`
}

type ListingElements struct {
	Image    string `json:"image"`
	Address  string `json:"address"`
	InfoLine string `json:"info_line"` // first match is the description, second the structure
	Price    string `json:"price"`
	Link     string `json:"link"`
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// This supports loading from embedded data via go:embed.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}
	if len(config.Listing.Items) == 0 {
		return SelectorConfig{}, fmt.Errorf("selector config has no item selectors")
	}
	if config.Origin == "" {
		config.Origin = DefaultSelectors().Origin
	}

	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
// Keep in sync with selectors.json.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Origin:        "https://www.yad2.co.il",
		BlockedTitles: []string{"ShieldSquare Captcha"},
		Listing: ListingSelectors{
			Items: []string{
				`[data-testid="item-basic"]`,
			},
			Elements: ListingElements{
				Image:    `[data-testid="image"]`,
				Address:  `[class^="item-data-content_heading"]`,
				InfoLine: `[class^="item-data-content_itemInfoLine"]`,
				Price:    `[class^="price_price"]`,
				Link:     `a[class^="item-layout_itemLink"]`,
			},
		},
	}
}

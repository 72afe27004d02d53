package models

// Topic is one polled listing page. The name doubles as the storage key and
// the label used in notifications.
type Topic struct {
	Name     string `yaml:"topic" validate:"required"`
	URL      string `yaml:"url" validate:"required,url,startswith=http"`
	Disabled bool   `yaml:"disabled"`
}

// AdRecord is one extracted ad. Missing data is an empty string, never an error.
type AdRecord struct {
	FullLink    string `json:"fullLink"`
	ImageURL    string `json:"imageUrl"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Structure   string `json:"structure"`
	Price       string `json:"price"`
}

// DedupKey returns the identifier stored in a topic's seen-set.
// Ads without an image all share the empty key.
func (a AdRecord) DedupKey() string {
	return a.ImageURL
}

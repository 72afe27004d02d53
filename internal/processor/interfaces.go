package processor

import (
	"context"

	"github.com/pauljones0/listing-watch-bot/internal/models"
)

// PageFetcher retrieves the raw listing page for a topic.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ListingExtractor turns a listing page into ads.
type ListingExtractor interface {
	Extract(document string) ([]models.AdRecord, error)
}

// ChangeDetector filters out ads seen in earlier runs and records the rest.
type ChangeDetector interface {
	DetectNew(ctx context.Context, topic string, ads []models.AdRecord) ([]models.AdRecord, error)
}

// Notifier abstracts the messaging sink.
type Notifier interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photoURL, caption string) error
}

// Package detector finds ads not seen in earlier runs.
package detector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pauljones0/listing-watch-bot/internal/models"
	"github.com/pauljones0/listing-watch-bot/internal/storage"
)

// Marker signals a downstream process that a run produced fresh data.
type Marker interface {
	Mark() error
}

// Detector compares fetched ads with a topic's persisted seen-set.
type Detector struct {
	store  storage.SeenStore
	marker Marker
}

func New(store storage.SeenStore, marker Marker) *Detector {
	return &Detector{store: store, marker: marker}
}

// DetectNew returns the ads whose dedup key is not in the topic's seen-set,
// in input order. When there are any, their keys are appended to the set,
// the set is saved and the marker is touched. A marker failure is logged and
// does not withhold the new ads.
func (d *Detector) DetectNew(ctx context.Context, topic string, ads []models.AdRecord) ([]models.AdRecord, error) {
	seen, err := d.store.Load(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen-set: %w", err)
	}

	known := make(map[string]struct{}, len(seen)+len(ads))
	for _, id := range seen {
		known[id] = struct{}{}
	}

	var fresh []models.AdRecord
	for _, ad := range ads {
		key := ad.DedupKey()
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		seen = append(seen, key)
		fresh = append(fresh, ad)
	}

	if len(fresh) == 0 {
		slog.Debug("No new ads", "topic", topic, "fetched", len(ads))
		return nil, nil
	}

	if err := d.store.Save(ctx, topic, seen); err != nil {
		return nil, fmt.Errorf("failed to save seen-set: %w", err)
	}
	if d.marker != nil {
		// The ads are already recorded as seen, so they must still be
		// delivered; only the downstream commit signal is lost.
		if err := d.marker.Mark(); err != nil {
			slog.Error("Failed to write new-data marker", "topic", topic, "error", err)
		}
	}
	slog.Info("Detected new ads", "topic", topic, "new", len(fresh), "fetched", len(ads), "seen", len(seen))
	return fresh, nil
}

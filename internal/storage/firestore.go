package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	seenCollection   = "seen_sets"
	backupCollection = "seen_sets_backup"
)

// seenDoc is the document stored per topic.
type seenDoc struct {
	IDs       []string  `firestore:"ids"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// FirestoreStore keeps one document per topic in the seen_sets collection.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreStore{client: client, now: time.Now}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Load(ctx context.Context, topic string) ([]string, error) {
	docRef := s.client.Collection(seenCollection).Doc(Key(topic))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			slog.Info("No state for topic, creating empty document", "topic", topic, "doc", docRef.Path)
			if _, err := docRef.Set(ctx, seenDoc{IDs: []string{}, UpdatedAt: s.now()}); err != nil {
				return nil, fmt.Errorf("failed to create state for topic %s: %w", topic, err)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get state for topic %s: %w", topic, err)
	}

	ids, err := decodeSeen(doc.Data())
	if err != nil {
		backupID := fmt.Sprintf("%s-%s", Key(topic), s.now().UTC().Format("20060102T150405"))
		if _, werr := s.client.Collection(backupCollection).Doc(backupID).Set(ctx, doc.Data()); werr != nil {
			return nil, fmt.Errorf("failed to back up corrupted state for topic %s: %w", topic, werr)
		}
		slog.Warn("Recovered from corrupted state, starting with an empty seen-set",
			"topic", topic, "backup", backupCollection+"/"+backupID, "error", errors.Join(ErrStateCorrupted, err))
		return nil, nil
	}
	return ids, nil
}

func (s *FirestoreStore) Save(ctx context.Context, topic string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	docRef := s.client.Collection(seenCollection).Doc(Key(topic))
	if _, err := docRef.Set(ctx, seenDoc{IDs: ids, UpdatedAt: s.now()}); err != nil {
		return fmt.Errorf("failed to save state for topic %s: %w", topic, err)
	}
	return nil
}

// decodeSeen reads the ids field of a seen-set document. A missing field is an
// empty set; any other shape is corruption.
func decodeSeen(data map[string]interface{}) ([]string, error) {
	raw, ok := data["ids"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("ids field has unexpected type %T", raw)
	}
	ids := make([]string, 0, len(list))
	for i, v := range list {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ids[%d] has unexpected type %T", i, v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

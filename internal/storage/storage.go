// Package storage persists the per-topic seen-sets used for change detection.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// ErrStateCorrupted is logged when a stored seen-set cannot be parsed. The
// store backs the raw data up and continues with an empty set; the error is
// never returned to callers.
var ErrStateCorrupted = errors.New("seen-set state corrupted")

// SeenStore loads and saves the identifiers already seen for a topic.
type SeenStore interface {
	// Load returns the seen-set in insertion order. Missing state is created
	// empty; corrupt state is backed up and treated as empty.
	Load(ctx context.Context, topic string) ([]string, error)
	// Save replaces the stored seen-set for topic.
	Save(ctx context.Context, topic string, ids []string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^\p{L}\p{N}._-]`)

// Key maps a topic name to a file name, document ID or Redis key suffix.
// Letters and digits of any script are kept. When anything else had to be
// replaced, a short hash of the raw name is appended so distinct topics never
// share a key.
func Key(topic string) string {
	key := unsafeKeyChars.ReplaceAllString(topic, "_")
	if key != topic || reservedKey(key) {
		sum := sha256.Sum256([]byte(topic))
		key += "-" + hex.EncodeToString(sum[:4])
	}
	return key
}

// reservedKey reports names that are not usable as-is: empty, dot paths, and
// Firestore's reserved __name__ IDs.
func reservedKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return true
	}
	return len(key) >= 4 && strings.HasPrefix(key, "__") && strings.HasSuffix(key, "__")
}

package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrBotBlocked means the site served a bot challenge instead of listings.
	// It is not retried: the site, not the network, is the problem.
	ErrBotBlocked = errors.New("bot challenge page detected")
	// ErrNoItemsFound means none of the item selectors matched.
	ErrNoItemsFound = errors.New("no listing items found")
	// ErrInvalidURL is wrapped by FetchError for URLs that cannot be fetched at all.
	ErrInvalidURL = errors.New("invalid listing URL")
)

// FetchError reports a fetch that never produced a successful response,
// either because retries ran out or because the elapsed-time ceiling was hit.
// Use errors.Is with util.ErrRetriesExhausted or util.ErrMaxElapsed to tell
// them apart; most callers don't need to.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

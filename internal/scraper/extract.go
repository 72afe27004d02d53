package scraper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pauljones0/listing-watch-bot/internal/models"
	"github.com/pauljones0/listing-watch-bot/internal/util"
)

// ItemStrategy locates item nodes in a document. An empty selection means no match.
type ItemStrategy func(doc *goquery.Document) *goquery.Selection

// SelectorStrategy returns an ItemStrategy matching a CSS selector.
func SelectorStrategy(selector string) ItemStrategy {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(selector)
	}
}

// Extractor maps a listing page to ad records.
type Extractor struct {
	selectors  SelectorConfig
	strategies []ItemStrategy
}

func NewExtractor(selectors SelectorConfig) *Extractor {
	strategies := make([]ItemStrategy, 0, len(selectors.Listing.Items))
	for _, sel := range selectors.Listing.Items {
		strategies = append(strategies, SelectorStrategy(sel))
	}
	return &Extractor{selectors: selectors, strategies: strategies}
}

// Extract returns the ads on the page in document order. It fails with
// ErrBotBlocked for bot challenge pages and ErrNoItemsFound when no item
// strategy matches.
func (e *Extractor) Extract(document string) ([]models.AdRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if e.isBlockedTitle(title) {
		return nil, fmt.Errorf("%w: page title %q", ErrBotBlocked, title)
	}

	items, matched := e.findItems(doc)
	if items == nil {
		return nil, fmt.Errorf("%w: tried %d selector(s)", ErrNoItemsFound, len(e.strategies))
	}
	slog.Debug("Matched listing items", "selector", matched, "count", items.Length())

	ads := make([]models.AdRecord, 0, items.Length())
	items.Each(func(_ int, s *goquery.Selection) {
		ads = append(ads, e.extractAd(s))
	})
	return ads, nil
}

func (e *Extractor) isBlockedTitle(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, blocked := range e.selectors.BlockedTitles {
		if blocked != "" && strings.Contains(lower, strings.ToLower(blocked)) {
			return true
		}
	}
	return false
}

// findItems returns the first non-empty strategy result and its selector.
func (e *Extractor) findItems(doc *goquery.Document) (*goquery.Selection, string) {
	for i, strategy := range e.strategies {
		if sel := strategy(doc); sel != nil && sel.Length() > 0 {
			return sel, e.selectors.Listing.Items[i]
		}
	}
	return nil, ""
}

func (e *Extractor) extractAd(s *goquery.Selection) models.AdRecord {
	elements := e.selectors.Listing.Elements
	var ad models.AdRecord
	var missing []string

	// 1. Image
	imgSelection := s.Find(elements.Image).First()
	if imgSelection.Length() > 0 && !imgSelection.Is("img") {
		imgSelection = imgSelection.Find("img").First()
	}
	if src, exists := imgSelection.Attr("src"); exists {
		ad.ImageURL = strings.TrimSpace(src)
	}
	if ad.ImageURL == "" {
		missing = append(missing, "image")
	}

	// 2. Address
	ad.Address = util.CleanText(s.Find(elements.Address).First().Text())
	if ad.Address == "" {
		missing = append(missing, "address")
	}

	// 3. Description and structure lines
	infoLines := s.Find(elements.InfoLine)
	ad.Description = util.CleanText(infoLines.Eq(0).Text())
	ad.Structure = util.CleanText(infoLines.Eq(1).Text())

	// 4. Price
	ad.Price = util.CleanText(s.Find(elements.Price).First().Text())
	if ad.Price == "" {
		missing = append(missing, "price")
	}

	// 5. Link
	linkSelection := s.Find(elements.Link).First()
	if linkSelection.Length() == 0 && s.Is(elements.Link) {
		linkSelection = s
	}
	if href, exists := linkSelection.Attr("href"); exists {
		ad.FullLink = util.ResolveURL(e.selectors.Origin, href)
	}
	if ad.FullLink == "" {
		missing = append(missing, "link")
	}

	if len(missing) > 0 {
		slog.Debug("Ad is missing fields", "address", ad.Address, "missing", strings.Join(missing, ","))
	}
	return ad
}

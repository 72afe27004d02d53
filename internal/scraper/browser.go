package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders listing pages in headless Chrome. It is slower than
// Fetcher but gets past sites that refuse plain HTTP clients.
type BrowserFetcher struct {
	opts      FetchOptions
	allocOpts []chromedp.ExecAllocatorOption
}

// NewBrowserFetcher creates a BrowserFetcher using the default headless flags.
func NewBrowserFetcher(opts FetchOptions, extra ...chromedp.ExecAllocatorOption) *BrowserFetcher {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("lang", "he-IL"))
	allocOpts = append(allocOpts, extra...)
	return &BrowserFetcher{opts: opts, allocOpts: allocOpts}
}

// Fetch returns the rendered document HTML, or a *FetchError.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	return fetchWithRetry(ctx, f.opts, pageURL, f.renderOnce)
}

func (f *BrowserFetcher) renderOnce(ctx context.Context, pageURL string) (string, error) {
	// A fresh browser per attempt so every attempt gets a new identity.
	allocOpts := append(f.allocOpts[:len(f.allocOpts):len(f.allocOpts)], chromedp.UserAgent(randomUserAgent()))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render URL %s: %w", pageURL, err)
	}
	return html, nil
}

package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure WebsiteExtractor implements the interface.
var _ driven.Extractor = (*WebsiteExtractor)(nil)

// WebsiteConfig holds settings for the website extractor.
type WebsiteConfig struct {
	// PageTimeout bounds the fetch of a single page
	PageTimeout time.Duration

	// MaxPages caps how many configured URLs are fetched per source
	MaxPages int

	// UserAgent is sent on every request
	UserAgent string
}

// DefaultWebsiteConfig returns sensible defaults.
func DefaultWebsiteConfig() *WebsiteConfig {
	return &WebsiteConfig{
		PageTimeout: 30 * time.Second,
		MaxPages:    100,
		UserAgent:   "docbase-bot/1.0",
	}
}

// WebsiteExtractor fetches the configured page URLs and strips them down
// to readable text. A page that fails does not fail the source as long
// as at least one other page succeeds.
type WebsiteExtractor struct {
	client *http.Client
	config *WebsiteConfig
}

// NewWebsiteExtractor creates a website extractor.
func NewWebsiteExtractor(config *WebsiteConfig) *WebsiteExtractor {
	if config == nil {
		config = DefaultWebsiteConfig()
	}
	if config.PageTimeout <= 0 {
		config.PageTimeout = DefaultWebsiteConfig().PageTimeout
	}
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultWebsiteConfig().MaxPages
	}
	return &WebsiteExtractor{
		client: &http.Client{Timeout: config.PageTimeout},
		config: config,
	}
}

// Type returns the source type this extractor handles.
func (e *WebsiteExtractor) Type() domain.SourceType {
	return domain.SourceTypeWebsite
}

// Extract fetches every configured URL and returns one item per page
// that yielded text. It fails only when no page could be extracted.
func (e *WebsiteExtractor) Extract(ctx context.Context, source *domain.Source) ([]driven.Item, error) {
	urls := source.Config.URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: website source has no urls", domain.ErrInvalidInput)
	}
	if len(urls) > e.config.MaxPages {
		urls = urls[:e.config.MaxPages]
	}

	var items []driven.Item
	var failures []string
	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := e.fetchPage(ctx, pageURL)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", pageURL, err))
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("all pages failed: %s", strings.Join(failures, "; "))
	}
	return items, nil
}

func (e *WebsiteExtractor) fetchPage(ctx context.Context, pageURL string) (driven.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return driven.Item{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := e.client.Do(req)
	if err != nil {
		return driven.Item{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return driven.Item{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return driven.Item{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := pageText(doc)
	if text == "" {
		return driven.Item{}, fmt.Errorf("no extractable text")
	}

	metadata := map[string]string{domain.MetaSourceURL: pageURL}
	if title != "" {
		metadata[domain.MetaItemTitle] = title
	}
	return driven.Item{Text: text, Metadata: metadata}, nil
}

// pageText strips non-content elements and flattens the remaining
// markup into paragraph-separated text.
func pageText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()

	// Prefer the semantic content root when the page has one.
	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return ""
	}

	var paragraphs []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td").Each(func(_ int, sel *goquery.Selection) {
		// Skip elements that only wrap other matched elements.
		if sel.Find("p, li").Length() > 0 {
			return
		}
		if text := collapseWhitespace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return collapseWhitespace(root.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

// collapseWhitespace squeezes runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

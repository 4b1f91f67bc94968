// Package extractor fetches a web page and reduces it to a bounded plain-text corpus.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/integration/common"
	"github.com/futig/deck-backend/internal/pkg/textutil"
	pkghttp "github.com/futig/deck-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// noiseSelectors are removed before any text is read
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"template", "svg", "iframe",
}

// contentSelectors are tried in order; the first one with text wins
var contentSelectors = []string{
	"main", "article",
	".content", ".main-content", ".post-content", ".entry-content", ".article-content",
	"#content", "#main", ".container",
}

// boilerplatePrefixes mark lines that are dropped regardless of length
var boilerplatePrefixes = []string{"cookie", "privacy", "terms", "subscribe", "follow"}

type Options struct {
	MaxChars      int
	MinLineLength int
}

type Extractor struct {
	connector *pkghttp.Connector
	opts      Options
	minChars  int
	logger    *zap.Logger
}

func NewExtractor(cfg config.ExtractorConfig, logger *zap.Logger) *Extractor {
	return &Extractor{
		connector: common.NewBaseConnector(
			cfg.HTTPClientConfig,
			logger,
			cfg.MaxDownloadMiB<<20,
			pkghttp.WithUserAgent(cfg.UserAgent),
		),
		opts: Options{
			MaxChars:      cfg.MaxChars,
			MinLineLength: cfg.MinLineLength,
		},
		minChars: cfg.MinChars,
		logger:   logger,
	}
}

// Extract fetches rawURL and returns its cleaned text.
// Fetch failures, bad statuses and too little text all yield entity.ErrExtraction; nothing is retried.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	ctxzap.Info(ctx, "fetching page", zap.String("url", rawURL))

	resp, err := e.connector.Get(ctx, "",
		pkghttp.WithURL(rawURL),
		pkghttp.WithHeader("Accept", "text/html,application/xhtml+xml"),
	)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", entity.ErrExtraction, rawURL, err)
	}

	text, err := Clean(resp.Body, resp.ContentType, e.opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrExtraction, err)
	}

	length := textutil.Len(text)
	if length < e.minChars {
		return "", fmt.Errorf("%w: only %d characters of content found", entity.ErrExtraction, length)
	}

	ctxzap.Info(ctx, "page content extracted", zap.Int("chars", length))

	return text, nil
}

// ValidateURL checks that rawURL is an absolute http or https URL
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: url is required", entity.ErrValidation)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid url: %v", entity.ErrValidation, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must start with http:// or https://", entity.ErrValidation)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", entity.ErrValidation)
	}

	return nil
}

// Clean parses an HTML document and returns its main text, one line per text block
func Clean(body []byte, contentType string, opts Options) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var raw string
	for _, sel := range contentSelectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		if raw = selectionText(found); strings.TrimSpace(raw) != "" {
			break
		}
	}

	if strings.TrimSpace(raw) == "" {
		raw = selectionText(doc.Selection)
	}

	return cleanLines(raw, opts), nil
}

// selectionText joins the text nodes of every matched element with newlines
func selectionText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

func cleanLines(raw string, opts Options) string {
	seen := make(map[string]struct{})
	lines := make([]string, 0, 64)

	for _, line := range strings.Split(raw, "\n") {
		line = textutil.CollapseSpaces(line)
		if textutil.Len(line) <= opts.MinLineLength || isBoilerplate(line) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	text := strings.Join(lines, "\n")
	if opts.MaxChars > 0 {
		text = textutil.Clip(text, opts.MaxChars)
	}

	return text
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

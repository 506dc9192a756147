package rhyme

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sukalov/lyricbot/internal/logger"
)

// rhymeZoneSelector matches the result links on a RhymeZone results page.
const rhymeZoneSelector = "a.r, a.d"

// RhymeZone scrapes rhymes from RhymeZone's HTML results page. It is a
// secondary source behind Datamuse.
type RhymeZone struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewRhymeZone creates a scraper for the results page at baseURL, for
// example https://www.rhymezone.com/r/rhyme.cgi.
func NewRhymeZone(baseURL string) *RhymeZone {
	return &RhymeZone{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		userAgent: "Mozilla/5.0 (compatible; lyricbot/1.0)",
	}
}

func (rz *RhymeZone) Rhymes(ctx context.Context, word string) ([]string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, nil
	}

	page, err := rz.fetch(ctx, word)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	rhymes, err := ParseRhymePage(page, word)
	if err != nil {
		return nil, err
	}
	logger.Debug("rhymezone page parsed", zap.String("word", word), zap.Int("rhymes", len(rhymes)))
	return rhymes, nil
}

func (rz *RhymeZone) fetch(ctx context.Context, word string) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("Word", word)
	q.Set("typeofrhyme", "perfect")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rz.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", rz.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := rz.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("rhymezone status %d", resp.StatusCode)
	}

	// Setting Accept-Encoding ourselves turns off transparent decompression.
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzipBody{Reader: gz, body: resp.Body}, nil
	}
	return resp.Body, nil
}

type gzipBody struct {
	*gzip.Reader
	body io.Closer
}

func (g gzipBody) Close() error {
	g.Reader.Close()
	return g.body.Close()
}

// ParseRhymePage extracts single-word rhymes from a results page, in page
// order, dropping the queried word itself.
func ParseRhymePage(r io.Reader, word string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	word = strings.ToLower(strings.TrimSpace(word))
	seen := map[string]bool{word: true}
	var rhymes []string
	doc.Find(rhymeZoneSelector).Each(func(_ int, s *goquery.Selection) {
		candidate := cleanWord(s.Text())
		if candidate == "" || seen[candidate] {
			return
		}
		seen[candidate] = true
		rhymes = append(rhymes, candidate)
	})
	return rhymes, nil
}

// cleanWord lowercases a scraped link text and rejects phrases.
func cleanWord(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.ContainsAny(s, " -") {
		return ""
	}
	return s
}

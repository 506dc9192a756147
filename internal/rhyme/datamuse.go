package rhyme

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDatamuseURL = "https://api.datamuse.com"
	defaultMaxResults  = 50
)

// Datamuse looks rhymes up with the Datamuse words API.
type Datamuse struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	userAgent  string
}

// NewDatamuse creates a client. An empty baseURL uses the public API.
func NewDatamuse(baseURL string, maxResults int) *Datamuse {
	if baseURL == "" {
		baseURL = DefaultDatamuseURL
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Datamuse{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: "lyricbot/1.0",
	}
}

type datamuseWord struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}

// Rhymes returns single-word perfect rhymes, lowercased and de-duplicated.
func (d *Datamuse) Rhymes(ctx context.Context, word string) ([]string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("rel_rhy", word)
	q.Set("max", strconv.Itoa(d.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/words?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datamuse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datamuse status %d: %s", resp.StatusCode, string(body))
	}

	var words []datamuseWord
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]bool, len(words))
	rhymes := make([]string, 0, len(words))
	for _, w := range words {
		candidate := strings.ToLower(strings.TrimSpace(w.Word))
		if candidate == "" || strings.ContainsAny(candidate, " -") || seen[candidate] {
			continue
		}
		seen[candidate] = true
		rhymes = append(rhymes, candidate)
	}
	return rhymes, nil
}

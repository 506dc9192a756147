package rhyme

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rhymePage = `<html><body>
<h2>Words and phrases that rhyme with sun:</h2>
<b>1 syllable:</b>
<a class="r" href="d?u=fun">fun</a>,
<a class="r" href="d?u=run">Run</a>,
<a class="r" href="d?u=sun">sun</a>,
<a class="d" href="d?u=done">done</a>,
<a class="r" href="d?u=fun">fun</a>,
<a class="r" href="d?u=hot+dog+bun">hot&nbsp;dog&nbsp;bun</a>,
<a href="/about">about</a>
</body></html>`

func TestParseRhymePage(t *testing.T) {
	got, err := ParseRhymePage(strings.NewReader(rhymePage), "Sun")
	require.NoError(t, err)
	assert.Equal(t, []string{"fun", "run", "done"}, got)
}

func TestRhymeZone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sun", r.URL.Query().Get("Word"))
		assert.Equal(t, "perfect", r.URL.Query().Get("typeofrhyme"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(rhymePage))
		_ = gz.Close()
	}))
	defer srv.Close()

	got, err := NewRhymeZone(srv.URL).Rhymes(context.Background(), " SUN ")
	require.NoError(t, err)
	assert.Equal(t, []string{"fun", "run", "done"}, got)
}

func TestRhymeZoneErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rz := NewRhymeZone(srv.URL)
	_, err := rz.Rhymes(context.Background(), "sun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	got, err := rz.Rhymes(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

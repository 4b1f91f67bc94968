package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const articlePage = `<!doctype html>
<html><head><title>t</title><style>.x{color:red}</style><script>var a = "script text that is long enough";</script></head>
<body>
<header>Site header with a long enough navigation line</header>
<nav>Home | About | Contact | Another long navigation entry</nav>
<div class="container">Container text that should not be used when article exists</div>
<article>
  <h1>Solar energy adoption is accelerating worldwide</h1>
  <p>Installed photovoltaic capacity doubled between 2019 and 2023 in Europe.</p>
  <p>Installed photovoltaic capacity doubled between 2019 and 2023 in Europe.</p>
  <p>Short line</p>
  <p>Cookie settings can be changed at any time in your browser.</p>
  <p>Battery    storage   costs fell   by  more than eighty percent in a decade.</p>
</article>
<footer>Footer text with copyright and a long enough line</footer>
</body></html>`

func testExtractorConfig() config.ExtractorConfig {
	return config.ExtractorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: 500 * time.Millisecond},
		UserAgent:        "Mozilla/5.0 test",
		MaxChars:         25000,
		MinChars:         100,
		MinLineLength:    20,
		MaxDownloadMiB:   1,
	}
}

func TestClean(t *testing.T) {
	text, err := Clean([]byte(articlePage), "text/html; charset=utf-8", Options{MaxChars: 25000, MinLineLength: 20})
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, []string{
		"Solar energy adoption is accelerating worldwide",
		"Installed photovoltaic capacity doubled between 2019 and 2023 in Europe.",
		"Battery storage costs fell by more than eighty percent in a decade.",
	}, lines)
}

func TestClean_FallsBackToWholePage(t *testing.T) {
	page := `<html><body><div><p>This paragraph lives outside any known container element.</p></div>
<footer>Footer that must be removed from the output entirely</footer></body></html>`

	text, err := Clean([]byte(page), "", Options{MaxChars: 1000, MinLineLength: 20})
	require.NoError(t, err)
	assert.Equal(t, "This paragraph lives outside any known container element.", text)
}

func TestClean_SkipsEmptyContainer(t *testing.T) {
	page := `<html><body><main><script>only script here</script></main>
<div id="content"><p>The content block carries the actual article body text.</p></div></body></html>`

	text, err := Clean([]byte(page), "", Options{MaxChars: 1000, MinLineLength: 20})
	require.NoError(t, err)
	assert.Equal(t, "The content block carries the actual article body text.", text)
}

func TestClean_TruncatesToBudget(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><article>")
	for i := 0; i < 200; i++ {
		b.WriteString("<p>Unique paragraph number ")
		b.WriteString(strings.Repeat("x", i%7+1))
		b.WriteString(" with padding text ")
		b.WriteString(string(rune('a' + i%26)))
		b.WriteString(strings.Repeat("y", i))
		b.WriteString("</p>")
	}
	b.WriteString("</article></body></html>")

	text, err := Clean([]byte(b.String()), "", Options{MaxChars: 500, MinLineLength: 20})
	require.NoError(t, err)
	assert.Len(t, []rune(text), 500)
}

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0 test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	text, err := NewExtractor(testExtractorConfig(), zap.NewNop()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Solar energy adoption")
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(time.Second)
			},
		},
		{
			name: "too little text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html><body><article><p>Only one sentence of real text here.</p></article></body></html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewExtractor(testExtractorConfig(), zap.NewNop()).Extract(context.Background(), srv.URL)
			assert.ErrorIs(t, err, entity.ErrExtraction)
		})
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com", "example.com/page", "http://"} {
		assert.ErrorIs(t, ValidateURL(u), entity.ErrValidation, u)
	}
	assert.NoError(t, ValidateURL("https://example.com/a"))
	assert.NoError(t, ValidateURL("http://localhost:8080"))
}

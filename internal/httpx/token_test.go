package httpx

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieValue(t *testing.T) {
	tests := []struct {
		name    string
		cookies string
		want    string
		wantOK  bool
	}{
		{"first", "csrftoken=abc123; theme=dark", "abc123", true},
		{"last", "theme=dark; csrftoken=abc123", "abc123", true},
		{"no spaces", "theme=dark;csrftoken=xyz", "xyz", true},
		{"encoded", "csrftoken=a%2Bb%20c", "a+b c", true},
		{"plus kept", "csrftoken=a+b", "a+b", true},
		{"equals in value", "csrftoken=abc==", "abc==", true},
		{"bad escape kept raw", "csrftoken=%zz", "%zz", true},
		{"prefix is not a match", "xcsrftoken=1; csrftoken2=2", "", false},
		{"missing", "theme=dark", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CookieValue(tt.cookies, DefaultCSRFCookie)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestMetaContent(t *testing.T) {
	page := `<html><head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width">
<meta name="csrf-token" content="meta-token">
</head><body></body></html>`

	got, ok := MetaContent(strings.NewReader(page), DefaultCSRFMeta)
	assert.True(t, ok)
	assert.Equal(t, "meta-token", got)

	_, ok = MetaContent(strings.NewReader("<html><head></head></html>"), DefaultCSRFMeta)
	assert.False(t, ok)
}

func newJarTokens(t *testing.T) *CookieJarTokens {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse("http://localhost:8000")
	require.NoError(t, err)
	return &CookieJarTokens{Jar: jar, URL: u}
}

func TestCookieJarTokens_CookieFirst(t *testing.T) {
	ts := newJarTokens(t)
	ts.Jar.SetCookies(ts.URL, []*http.Cookie{
		{Name: "theme", Value: "dark"},
		{Name: "csrftoken", Value: "abc123"},
	})
	ts.ObservePage(strings.NewReader(`<meta name="csrf-token" content="from-meta">`))

	assert.Equal(t, "abc123", ts.Token())
}

func TestCookieJarTokens_MetaFallback(t *testing.T) {
	ts := newJarTokens(t)
	ts.ObservePage(strings.NewReader(`<meta name="csrf-token" content="from-meta">`))

	assert.Equal(t, "from-meta", ts.Token())

	// a page without the tag keeps the last known value
	ts.ObservePage(strings.NewReader(`<p>no meta here</p>`))
	assert.Equal(t, "from-meta", ts.Token())
}

func TestCookieJarTokens_Empty(t *testing.T) {
	ts := newJarTokens(t)
	assert.Equal(t, "", ts.Token())

	var zero CookieJarTokens
	assert.Equal(t, "", zero.Token())
}

func TestCookieJarTokens_CustomNames(t *testing.T) {
	ts := newJarTokens(t)
	ts.CookieName = "XSRF"
	ts.MetaName = "xsrf"
	ts.Jar.SetCookies(ts.URL, []*http.Cookie{{Name: "csrftoken", Value: "ignored"}})
	ts.ObservePage(strings.NewReader(`<meta name="xsrf" content="custom">`))

	assert.Equal(t, "custom", ts.Token())
}

package httpx

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Conventional names used by the server for the anti-forgery token.
const (
	DefaultCSRFCookie = "csrftoken"
	DefaultCSRFMeta   = "csrf-token"
	CSRFHeader        = "X-CSRFToken"
)

// TokenSource returns the current anti-forgery token, or "" if none is known.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// CookieValue parses a cookie string ("a=1; b=2") and returns the decoded
// value of the named cookie.
func CookieValue(cookies, name string) (string, bool) {
	for _, part := range strings.Split(cookies, ";") {
		k, v, _ := strings.Cut(strings.TrimSpace(part), "=")
		if k != name {
			continue
		}
		decoded, err := url.PathUnescape(v)
		if err != nil {
			return v, true
		}
		return decoded, true
	}
	return "", false
}

// MetaContent returns the content attribute of <meta name="name"> in an
// HTML document.
func MetaContent(r io.Reader, name string) (string, bool) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var metaName, content string
			var hasContent bool
			for _, a := range tok.Attr {
				switch a.Key {
				case "name":
					metaName = a.Val
				case "content":
					content, hasContent = a.Val, true
				}
			}
			if metaName == name && hasContent {
				return content, true
			}
		}
	}
}

// CookieJarTokens looks the token up in a cookie string first and falls
// back to the last meta tag seen on a fetched page.
type CookieJarTokens struct {
	Jar        http.CookieJar
	URL        *url.URL
	CookieName string
	MetaName   string

	mu   sync.RWMutex
	meta string
}

// Token implements TokenSource.
func (t *CookieJarTokens) Token() string {
	if t.Jar != nil && t.URL != nil {
		if v, ok := CookieValue(cookieString(t.Jar.Cookies(t.URL)), t.cookieName()); ok {
			return v
		}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta
}

// ObservePage records the meta token from an HTML page.
func (t *CookieJarTokens) ObservePage(body io.Reader) {
	v, ok := MetaContent(body, t.metaName())
	if !ok {
		return
	}
	t.mu.Lock()
	t.meta = v
	t.mu.Unlock()
}

func (t *CookieJarTokens) cookieName() string {
	if t.CookieName == "" {
		return DefaultCSRFCookie
	}
	return t.CookieName
}

func (t *CookieJarTokens) metaName() string {
	if t.MetaName == "" {
		return DefaultCSRFMeta
	}
	return t.MetaName
}

func cookieString(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

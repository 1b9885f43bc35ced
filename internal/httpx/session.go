package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Session is an HTTP client bound to one server: it keeps cookies, knows
// the anti-forgery token and sends every call through an Interceptor.
type Session struct {
	BaseURL *url.URL
	Tokens  *CookieJarTokens
	doer    Doer
}

// SessionConfig configures NewSession.
type SessionConfig struct {
	BaseURL    string
	Timeout    time.Duration
	CSRFCookie string
	CSRFMeta   string
	// Transport overrides the base transport. Tests inject one here.
	Transport http.RoundTripper
}

// NewSession creates a Session. opts are passed to Install; the token
// source is always the session's own cookie jar.
func NewSession(cfg SessionConfig, opts ...Option) (*Session, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := &http.Client{Jar: jar, Timeout: cfg.Timeout, Transport: cfg.Transport}
	tokens := &CookieJarTokens{
		Jar:        jar,
		URL:        base,
		CookieName: cfg.CSRFCookie,
		MetaName:   cfg.CSRFMeta,
	}

	opts = append(opts, WithTokens(tokens))
	return &Session{
		BaseURL: base,
		Tokens:  tokens,
		doer:    Install(client, opts...),
	}, nil
}

// Doer returns the intercepted Doer.
func (s *Session) Doer() Doer { return s.doer }

// URL resolves path against the base URL.
func (s *Session) URL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return s.BaseURL.String() + path
	}
	return s.BaseURL.ResolveReference(ref).String()
}

// NewRequest builds a request for path relative to the base URL.
func (s *Session) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return req, nil
}

// Do sends req through the interceptor.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.doer.Do(req)
}

// Page fetches an HTML page, records its anti-forgery meta tag and returns
// the body.
func (s *Session) Page(ctx context.Context, path string) ([]byte, error) {
	req, err := s.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	s.Tokens.ObservePage(bytes.NewReader(body))
	return body, nil
}

// Prime fetches the home page so the server sets the anti-forgery cookie.
func (s *Session) Prime(ctx context.Context) error {
	_, err := s.Page(ctx, "/")
	return err
}

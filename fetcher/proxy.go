package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/a-thread/elysia-sub000/models"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	defaultMaxBodyBytes = 10 << 20
)

// Options configures a ProxyFetcher.
type Options struct {
	// ProxyURL is the prefix the encoded target URL is appended to,
	// e.g. "https://proxy.corsfix.com/?". Required.
	ProxyURL string

	// UserAgent overrides the default Chrome user agent.
	UserAgent string

	// MaxBodyBytes caps the response body. Default: 10 MiB.
	MaxBodyBytes int64

	// Transport overrides the Chrome-fingerprinted transport.
	Transport http.RoundTripper
}

// ProxyFetcher fetches pages through a pass-through proxy that takes the
// target as its URI-component encoded query string. There is no retry and
// no direct fallback: if the proxy fails, the fetch fails.
type ProxyFetcher struct {
	proxyURL  string
	userAgent string
	maxBody   int64
	client    *http.Client
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewProxyFetcher creates a ProxyFetcher.
func NewProxyFetcher(opts Options) *ProxyFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	transport := opts.Transport
	if transport == nil {
		transport = newChromeTransport()
	}

	return &ProxyFetcher{
		proxyURL:  opts.ProxyURL,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// newChromeTransport dials TLS with a Chrome fingerprint and ALPN locked to
// http/1.1.
func newChromeTransport() *http.Transport {
	return &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
}

func (f *ProxyFetcher) Name() string { return "proxy" }

// ProxiedURL returns the proxy request URL for targetURL.
func (f *ProxyFetcher) ProxiedURL(targetURL string) string {
	return f.proxyURL + encodeURIComponent(targetURL)
}

// Fetch retrieves targetURL through the proxy. Every failure past input
// validation is reported as a single FETCH_FAILED error, or SCRAPE_TIMEOUT
// when ctx expired.
func (f *ProxyFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	if _, err := ValidateTarget(targetURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ProxiedURL(targetURL), nil)
	if err != nil {
		return "", fetchError(ctx, fmt.Errorf("fetcher: build request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fetchError(ctx, fmt.Errorf("fetcher: do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fetchError(ctx, fmt.Errorf("fetcher: HTTP %d for %s", resp.StatusCode, targetURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fetchError(ctx, fmt.Errorf("fetcher: read body: %w", err))
	}

	slog.Debug("page fetched", "url", targetURL, "bytes", len(body))
	return string(body), nil
}

func fetchError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewScrapeError(models.ErrCodeTimeout, "timed out fetching recipe", err)
	}
	return models.NewScrapeError(models.ErrCodeFetch, "failed to fetch", err)
}

var uriComponentUnescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s the way browsers' encodeURIComponent does:
// everything but A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded.
func encodeURIComponent(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return uriComponentUnescaper.Replace(escaped)
}

package impi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultBootstrapURL = "https://acervomarcas.impi.gob.mx:8181/marcanet/vistas/common/datos/bsqDenominacionCompleto.pgi"
	defaultSearchURL    = "https://acervomarcas.impi.gob.mx:8181/marcanet/controlers/ctBusqueda.php"
	defaultReferer      = "https://acervomarcas.impi.gob.mx:8181/marcanet/"
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes        = 5 * 1024 * 1024
)

// Config drives Marcanet client behaviour.
type Config struct {
	BootstrapURL     string
	SearchURL        string
	Referer          string
	UserAgent        string
	BootstrapTimeout time.Duration
	SearchTimeout    time.Duration
	Transport        http.RoundTripper
}

// Client probes the IMPI Marcanet denomination search. Each probe runs in its own
// cookie session: a GET to obtain the session, then the search POST.
type Client struct {
	bootstrapURL     string
	searchURL        string
	referer          string
	userAgent        string
	bootstrapTimeout time.Duration
	searchTimeout    time.Duration
	transport        http.RoundTripper
}

// NewClient applies defaults to cfg and returns a ready client.
func NewClient(cfg Config) *Client {
	c := &Client{
		bootstrapURL:     firstNonEmpty(cfg.BootstrapURL, defaultBootstrapURL),
		searchURL:        firstNonEmpty(cfg.SearchURL, defaultSearchURL),
		referer:          firstNonEmpty(cfg.Referer, defaultReferer),
		userAgent:        firstNonEmpty(cfg.UserAgent, defaultUserAgent),
		bootstrapTimeout: cfg.BootstrapTimeout,
		searchTimeout:    cfg.SearchTimeout,
		transport:        cfg.Transport,
	}
	if c.bootstrapTimeout <= 0 {
		c.bootstrapTimeout = 15 * time.Second
	}
	if c.searchTimeout <= 0 {
		c.searchTimeout = 20 * time.Second
	}
	return c
}

// Probe looks the brand up and never fails; lookup errors map to an error outcome.
func (c *Client) Probe(ctx context.Context, brand string) Outcome {
	outcome, err := c.probe(ctx, brand)
	entry := logrus.WithFields(logrus.Fields{
		"brand":   brand,
		"outcome": outcome,
	})
	if err != nil {
		entry.WithError(err).Warn("impi lookup failed")
	} else {
		entry.Debug("impi lookup classified")
	}
	return outcome
}

func (c *Client) probe(ctx context.Context, brand string) (Outcome, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return OutcomeUnknownError, fmt.Errorf("cookie jar: %w", err)
	}
	session := &http.Client{Jar: jar, Transport: c.transport}

	status, _, failure, err := c.fetch(ctx, session, http.MethodGet, c.bootstrapURL, "", c.bootstrapTimeout)
	if err != nil {
		return failure, fmt.Errorf("bootstrap: %w", err)
	}
	if status != http.StatusOK {
		return OutcomeConnectionError, fmt.Errorf("bootstrap status %d", status)
	}

	form := url.Values{}
	form.Set("denominacion", brand)
	form.Set("tipo_busqueda", "EXACTA")
	form.Set("vigentes", "true")

	status, body, failure, err := c.fetch(ctx, session, http.MethodPost, c.searchURL, form.Encode(), c.searchTimeout)
	if err != nil {
		return failure, fmt.Errorf("search: %w", err)
	}
	if status != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"brand":  brand,
			"status": status,
		}).Warn("impi search returned non-200, classifying body anyway")
	}
	return classify(body)
}

// fetch performs one request under its own timeout and returns the status and body.
// On error the returned Outcome says which category the failure belongs to.
func (c *Client) fetch(ctx context.Context, session *http.Client, method, target, form string, timeout time.Duration) (int, []byte, Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, OutcomeUnknownError, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
	req.Header.Set("Referer", c.referer)
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := session.Do(req)
	if err != nil {
		return 0, nil, transportOutcome(err), err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, transportOutcome(err), fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, payload, "", nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

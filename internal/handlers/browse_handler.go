package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/damacus/iron-index/internal/config"
	"github.com/damacus/iron-index/internal/listing"
	"github.com/damacus/iron-index/internal/metrics"
	"github.com/damacus/iron-index/internal/services"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// Request headers passed through to the signed fetch.
var forwardedRequestHeaders = []string{"Range", "If-None-Match", "If-Modified-Since"}

type BrowseHandler struct {
	store   services.BucketStore
	cfg     config.Config
	client  *http.Client
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewBrowseHandler(store services.BucketStore, cfg config.Config, collector *metrics.Collector, logger *slog.Logger) *BrowseHandler {
	if collector == nil {
		collector = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowseHandler{
		store:   store,
		cfg:     cfg,
		client:  newFetchClient(cfg.FetchTimeout),
		metrics: collector,
		logger:  logger,
	}
}

// newFetchClient returns the client used for signed fetches. Upstream
// redirects and compression are handed to the caller untouched.
func newFetchClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	transport.DisableCompression = true
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Browse resolves the request path against the bucket and serves the file or
// the directory listing it names.
func (h *BrowseHandler) Browse(c echo.Context) error {
	requestPath := c.Request().URL.Path

	objects, err := h.listObjects(c.Request().Context())
	if err != nil {
		h.metrics.ProviderError(metrics.ErrorListing)
		h.logger.Error("listing failed", "bucket", h.cfg.Bucket, "path", requestPath, "error", err)
		return listingError(c, err)
	}

	resolver := h.resolver()
	switch res := resolver.Resolve(requestPath, objects).(type) {
	case listing.FileAccess:
		switch h.cfg.AccessPolicy {
		case config.PolicyPrivate:
			h.metrics.Resolved(metrics.KindFileProxy)
			return h.proxyObject(c, res.Key)
		case config.PolicyPublic:
			if h.cfg.DownloadURL != "" {
				h.metrics.Resolved(metrics.KindFileRedirect)
				return c.Redirect(http.StatusFound, h.cfg.DownloadURL+res.Key)
			}
		}
		h.metrics.Resolved(metrics.KindDirectory)
		return h.renderListing(c, resolver.Listing(requestPath, objects))
	case listing.DirectoryListing:
		h.metrics.Resolved(metrics.KindDirectory)
		return h.renderListing(c, res)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unexpected resolution %T", res))
	}
}

func (h *BrowseHandler) listObjects(ctx context.Context) ([]listing.ObjectRecord, error) {
	if h.cfg.ListTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.ListTimeout)
		defer cancel()
	}

	start := time.Now()
	objects, err := h.store.ListObjects(ctx)
	h.metrics.ObserveListing(time.Since(start))
	return objects, err
}

// resolver builds a fresh resolver per request; collators are not safe to share.
func (h *BrowseHandler) resolver() listing.Resolver {
	if h.cfg.SortLocale == "" {
		return listing.Resolver{}
	}
	return listing.Resolver{Compare: listing.CollatedCompare(language.Make(h.cfg.SortLocale))}
}

// proxyObject fetches a presigned URL for key and relays the upstream status,
// headers and body.
func (h *BrowseHandler) proxyObject(c echo.Context, key string) error {
	ctx := c.Request().Context()

	signed, err := h.store.PresignGet(ctx, key, h.cfg.SignedURLExpiry)
	if err != nil {
		h.metrics.ProviderError(metrics.ErrorSigning)
		h.logger.Error("signing failed", "bucket", h.cfg.Bucket, "key", key, "error", err)
		return listingError(c, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed.URL, nil)
	if err != nil {
		err = fmt.Errorf("%w: %v", services.ErrSigningFailure, err)
		h.metrics.ProviderError(metrics.ErrorSigning)
		h.logger.Error("signed url unusable", "bucket", h.cfg.Bucket, "key", key, "error", err)
		return listingError(c, err)
	}
	for name, values := range signed.Header {
		if strings.EqualFold(name, "Host") {
			if len(values) > 0 {
				req.Host = values[0]
			}
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for _, name := range forwardedRequestHeaders {
		if v := c.Request().Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.metrics.ProviderError(metrics.ErrorFetch)
		h.logger.Error("signed fetch failed", "bucket", h.cfg.Bucket, "key", key, "error", err)
		return listingError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	copyHeaders(c.Response().Header(), resp.Header)
	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Warn("proxy copy interrupted", "key", key, "error", err)
	}
	return nil
}

func (h *BrowseHandler) renderListing(c echo.Context, dir listing.DirectoryListing) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, listingJSON(dir))
	}
	return c.Render(http.StatusOK, "listing", listingPage(dir, hostLabel(c, h.cfg.Title)))
}

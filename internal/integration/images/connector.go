package images

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/config"
	"github.com/futig/deck-backend/internal/integration/common"
	pkghttp "github.com/futig/deck-backend/pkg/http"
)

var (
	ErrNoProvider = errors.New("no image provider configured")
	ErrNoResults  = errors.New("no images found")
)

type source struct {
	name      string
	connector *pkghttp.Connector
	search    func(ctx context.Context, conn *pkghttp.Connector, query string) (string, error)
}

// Connector searches Unsplash, then Pexels, downloads the first hit and re-encodes it as JPEG
type Connector struct {
	config   config.ImagesConnectorConfig
	sources  []source
	download *pkghttp.Connector
	logger   *zap.Logger
}

func NewConnector(cfg config.ImagesConnectorConfig, logger *zap.Logger) *Connector {
	c := &Connector{
		config: cfg,
		logger: logger,
	}

	if cfg.UnsplashKey != "" {
		httpCfg := cfg.HTTPClientConfig
		httpCfg.Url = cfg.UnsplashURL
		c.sources = append(c.sources, source{
			name:      "unsplash",
			connector: common.NewBaseConnector(httpCfg, logger, 0, pkghttp.WithAuthScheme("Client-ID", cfg.UnsplashKey)),
			search:    searchUnsplash,
		})
	}

	if cfg.PexelsKey != "" {
		httpCfg := cfg.HTTPClientConfig
		httpCfg.Url = cfg.PexelsURL
		c.sources = append(c.sources, source{
			name:      "pexels",
			connector: common.NewBaseConnector(httpCfg, logger, 0, pkghttp.WithAuthScheme("", cfg.PexelsKey)),
			search:    searchPexels,
		})
	}

	downloadCfg := cfg.HTTPClientConfig
	downloadCfg.Url = ""
	downloadCfg.Token = ""
	c.download = common.NewBaseConnector(downloadCfg, logger, cfg.MaxDownloadMiB<<20)

	return c
}

// Configured reports whether at least one provider key is set
func (c *Connector) Configured() bool {
	return len(c.sources) > 0
}

// FetchImage returns a JPEG no larger than the configured size for the query
func (c *Connector) FetchImage(ctx context.Context, query string) ([]byte, error) {
	if len(c.sources) == 0 {
		return nil, ErrNoProvider
	}

	var errs []error
	for _, src := range c.sources {
		data, err := c.fetchFrom(ctx, src, query)
		if err == nil {
			return data, nil
		}
		ctxzap.Warn(ctx, "image provider failed",
			zap.String("provider", src.name),
			zap.String("query", query),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", src.name, err))
	}

	return nil, errors.Join(errs...)
}

func (c *Connector) fetchFrom(ctx context.Context, src source, query string) ([]byte, error) {
	imageURL, err := retry.DoWithData(func() (string, error) {
		return src.search(ctx, src.connector, query)
	}, c.config.Retry.ToRetryOptions(ctx, isRetryable)...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	raw, err := retry.DoWithData(func() ([]byte, error) {
		resp, err := c.download.Get(ctx, "", pkghttp.WithURL(imageURL))
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}, c.config.Retry.ToRetryOptions(ctx, isRetryable)...)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	data, err := Process(raw, c.config.MaxImageSize, c.config.JPEGQuality)
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "image fetched",
		zap.String("provider", src.name),
		zap.String("query", query),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// isRetryable retries network failures, rate limits and server errors
func isRetryable(err error) bool {
	if errors.Is(err, ErrNoResults) || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	var netErr *pkghttp.NetworkError
	return errors.As(err, &netErr)
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Full    string `json:"full"`
		} `json:"urls"`
	} `json:"results"`
}

func searchUnsplash(ctx context.Context, conn *pkghttp.Connector, query string) (string, error) {
	var resp unsplashSearchResponse
	err := conn.DoRequest(ctx, http.MethodGet, "/search/photos", nil, &resp,
		pkghttp.WithQuery("query", query),
		pkghttp.WithQuery("per_page", "1"),
		pkghttp.WithQuery("orientation", "landscape"),
	)
	if err != nil {
		return "", err
	}

	if len(resp.Results) == 0 || resp.Results[0].URLs.Regular == "" {
		return "", ErrNoResults
	}
	return resp.Results[0].URLs.Regular, nil
}

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Large    string `json:"large"`
			Original string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

func searchPexels(ctx context.Context, conn *pkghttp.Connector, query string) (string, error) {
	var resp pexelsSearchResponse
	err := conn.DoRequest(ctx, http.MethodGet, "/v1/search", nil, &resp,
		pkghttp.WithQuery("query", query),
		pkghttp.WithQuery("per_page", "1"),
		pkghttp.WithQuery("orientation", "landscape"),
	)
	if err != nil {
		return "", err
	}

	if len(resp.Photos) == 0 || resp.Photos[0].Src.Large == "" {
		return "", ErrNoResults
	}
	return resp.Photos[0].Src.Large, nil
}

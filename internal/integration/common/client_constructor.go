package common

import (
	"github.com/futig/deck-backend/internal/config"
	pkgHTTP "github.com/futig/deck-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds an HTTP connector from the shared client settings.
// Extra options are applied after the defaults, so they can add transports such as auth or user agent.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, maxBodySize int64, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:      logger,
		BaseURL:     cfg.Url,
		MaxBodySize: maxBodySize,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}

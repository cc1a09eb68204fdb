// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/aalaeg1/into-EdU/internal/app/system/timeouts"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests served.
//
// Returning a non-nil error aborts startup and prevents the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("applied timeout overrides from environment", zap.Int("count", n))
	}

	logger.Info("startup complete",
		zap.String("identity_header", appCfg.IdentityHeader),
		zap.Duration("handle_ttl", appCfg.HandleTTL),
	)
	return nil
}

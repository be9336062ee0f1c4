// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/ads"
	"github.com/Aztech-1729/sliptads/internal/domain/auth"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth"
	"github.com/Aztech-1729/sliptads/internal/domain/session"
	"github.com/Aztech-1729/sliptads/internal/infrastructure"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.Module,
		// Domain modules
		session.Module, // Must be first (every other domain reads sessions)
		auth.Module,
		qrauth.Module,
		catalog.Module,
		campaign.Module,
		ads.Module,
	)
}

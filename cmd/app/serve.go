package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"storefront/cmd/fx/account_fx"
	"storefront/cmd/fx/catalog_fx"
	"storefront/cmd/fx/config_fx"
	"storefront/cmd/fx/contact_fx"
	"storefront/cmd/fx/controllers_fx"
	"storefront/cmd/fx/db_fx"
	"storefront/cmd/fx/mail_fx"
	"storefront/cmd/fx/memcache_fx"
	"storefront/cmd/fx/payment_service_fx"
	"storefront/cmd/fx/retailer_fx"
	"storefront/internal/api/controllers"
	"storefront/internal/config"
	"storefront/internal/services"
	"storefront/pkg/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			fx.NopLogger,
			config_fx.Module,
			db_fx.Module,
			memcache_fx.Module,
			mail_fx.Module,
			account_fx.Module,
			catalog_fx.Module,
			payment_service_fx.Module,
			retailer_fx.Module,
			contact_fx.Module,
			controllers_fx.Module,

			fx.Provide(ProvideRouter),
			fx.Invoke(StartServer),
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.WithField("addr", srv.Addr).Info("Starting HTTP server")
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Fatal("HTTP server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type Handlers struct {
	fx.In

	Identity services.IdentityService
	Catalog  *controllers.CatalogController
	Payment  *controllers.PaymentController
	Order    *controllers.OrderController
	Retailer *controllers.RetailerController
	Contact  *controllers.ContactController
	Config   *controllers.ConfigController
}

func ProvideRouter(cfg *config.Config, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	RegisterRoutes(r, h)

	return r
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api")
	api.Use(middleware.NoStore())

	optionalAuth := middleware.Identity(h.Identity, false)
	requiredAuth := middleware.Identity(h.Identity, true)

	api.GET("/products", optionalAuth, h.Catalog.ListProducts)
	api.GET("/products/:id", optionalAuth, h.Catalog.GetProduct)

	// Checkout resolves the bearer token itself so that cart errors win over
	// auth errors.
	api.POST("/create-checkout-session", h.Payment.CreateCheckoutSession)
	api.POST("/stripe-webhook", h.Payment.HandleWebhook)

	api.GET("/order-status", requiredAuth, h.Order.GetOrderStatus)
	api.POST("/retailer-apply", requiredAuth, h.Retailer.Apply)
	api.POST("/contact", h.Contact.Submit)

	api.GET("/public-config", h.Config.PublicConfig)
	api.GET("/env-check", h.Config.EnvCheck)
}

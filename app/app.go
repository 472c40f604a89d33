package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saasforge/authcore/cache"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/database"
	"github.com/saasforge/authcore/handlers"
	"github.com/saasforge/authcore/server"
	"github.com/saasforge/authcore/services/apikey"
	"github.com/saasforge/authcore/services/auth"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/mail"
	"github.com/saasforge/authcore/services/otp"
	"github.com/saasforge/authcore/services/password"
	"github.com/saasforge/authcore/services/ratelimit"
	"github.com/saasforge/authcore/services/revocation"
	"github.com/saasforge/authcore/services/session"
	"github.com/saasforge/authcore/services/totp"
	"go.uber.org/fx"
)

// App wraps the fx container for the service.
type App struct {
	fx     *fx.App
	logger *logging.Service
}

// Options assembles every module in the service. A nil cfg loads
// configuration from the environment.
func Options(cfg *config.Config, extra ...fx.Option) fx.Option {
	opts := []fx.Option{
		config.NewProvider(cfg),
		logging.Module,
		cache.Module,
		fx.Supply(database.WithModels(
			&auth.User{},
			&auth.OAuthAccount{},
			&totp.BackupCode{},
			&apikey.APIKey{},
		)),
		database.Module,
		password.Module,
		jwt.Module,
		revocation.Module,
		session.Module,
		totp.Module,
		apikey.Module,
		ratelimit.Module,
		mail.Module,
		otp.Module,
		auth.Module,
		handlers.Module,
		server.Module,
		fx.Invoke(func(srv *server.Server, h *handlers.Handler, jwtSvc *jwt.Service, logger *logging.Service, c *config.Config) {
			handlers.RegisterRoutes(srv.Echo(), h, jwtSvc, logger, c)
		}),
	}
	opts = append(opts, extra...)
	return fx.Options(opts...)
}

func New(cfg *config.Config, extra ...fx.Option) *App {
	a := &App{}
	a.fx = fx.New(
		Options(cfg, extra...),
		fx.Populate(&a.logger),
	)
	return a
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the container and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(context.Background()); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if a.logger != nil {
		a.logger.Info("shutdown signal received, stopping gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		log.Printf("failed to stop application gracefully: %v", err)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"crm-pharma-core/internal/app/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultShutdownWait = 30 * time.Second

// Application serveur HTTP de l'API CRM
type Application struct {
	cfg    config.ServerConfig
	env    string
	server *http.Server
	ln     net.Listener
	log    *zap.Logger
}

func NewApplication(cfg *config.Config, router *gin.Engine, log *zap.Logger) *Application {
	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return &Application{
		cfg:    cfg.Server,
		env:    cfg.Environment,
		server: server,
		log:    log.Named("server"),
	}
}

// Addr adresse effectivement écoutée, vide avant le démarrage
func (a *Application) Addr() string {
	if a.ln == nil {
		return ""
	}
	return a.ln.Addr().String()
}

// Start le port est réservé dans OnStart : un port occupé fait échouer le démarrage Fx
func (a *Application) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", a.cfg.Addr())
			if err != nil {
				return fmt.Errorf("écoute %s: %w", a.cfg.Addr(), err)
			}
			a.ln = ln
			a.log.Info("serveur HTTP à l'écoute", zap.String("addr", a.Addr()), zap.String("env", a.env))

			go func() {
				if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error("serveur HTTP interrompu", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			wait := a.cfg.ShutdownWait
			if wait <= 0 {
				wait = defaultShutdownWait
			}
			ctx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()

			if err := a.server.Shutdown(ctx); err != nil {
				a.log.Warn("requêtes interrompues à l'arrêt", zap.Error(err))
				return err
			}
			a.log.Info("serveur HTTP arrêté")
			return nil
		},
	})
}

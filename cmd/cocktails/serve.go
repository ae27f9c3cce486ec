package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gogotex/cocktails/internal/config"
	"github.com/gogotex/cocktails/internal/recipe/handler"
	"github.com/gogotex/cocktails/internal/recipe/service"
	"github.com/gogotex/cocktails/pkg/logger"
	"github.com/gogotex/cocktails/pkg/metrics"
	"github.com/gogotex/cocktails/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

var startTime = time.Now()

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipe queries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close(context.Background())

			metrics.RegisterCollectors(prometheus.DefaultRegisterer)
			r := newRouter(cfg, b, newService(cfg, b))
			r.GET("/metrics", gin.WrapH(promhttp.Handler()))

			addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      r,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Infof("serving recipes on %s (backend=%s)", addr, cfg.Store.Backend)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Infof("shutting down")
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// newRouter wires health, readiness, rate limiting and the recipe API. The
// Redis-backed limiter is used when the store itself lives in Redis.
func newRouter(cfg *config.Config, b *backend, svc service.Service) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.RPS > 0 {
		if b.redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(b.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, time.Second))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		uptime := time.Since(startTime).String()
		if err := b.Ready(c.Request.Context()); err != nil {
			logger.Warnf("readiness: store unavailable: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "backend": cfg.Store.Backend, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "backend": cfg.Store.Backend, "uptime": uptime})
	})

	handler.RegisterSwagger(r)
	handler.RegisterRecipeRoutes(r, svc)
	return r
}

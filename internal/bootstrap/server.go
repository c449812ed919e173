package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/Domenick1991/tourbooking/api"
	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	serviceName     = "tourbooking"
	shutdownTimeout = 5 * time.Second
	openAPIFile     = "openapi.json"
)

// Handler is a group of HTTP routes mounted under /api/v1.
type Handler interface {
	Register(router *gin.RouterGroup)
}

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// Run starts the gRPC health server and the HTTP API and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, handlers ...Handler) error {
	s := NewServers(cfg, log, handlers...)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	log.Info("servers started", zap.String("http", cfg.HTTP.Address), zap.String("grpc", cfg.GRPC.Address))

	select {
	case err := <-errCh:
		s.stop(context.Background())
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("servers stopped")
		return nil
	}
}

func NewServers(cfg *config.Config, log *logger.Logger, handlers ...Handler) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg.HTTP, log, handlers...),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Servers) stop(ctx context.Context) error {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	return s.httpServer.Shutdown(ctx)
}

// NewRouter builds the gin engine: middleware, /healthz, docs and every
// handler under /api/v1.
func NewRouter(cfg config.HTTPConfig, log *logger.Logger, handlers ...Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.AccessLog(log))
	if len(cfg.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.AllowOrigins)))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+openAPIFile))))
	}

	v1 := router.Group("/api/v1")
	for _, h := range handlers {
		h.Register(v1)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-ID", "X-User-ID", "X-User-Role")
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	return cfg
}

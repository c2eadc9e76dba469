package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/auth"
	"github.com/shareit-dev/shareit-backend/internal/booking"
	bookingHttp "github.com/shareit-dev/shareit-backend/internal/booking/http"
	"github.com/shareit-dev/shareit-backend/internal/metrics"
	"github.com/shareit-dev/shareit-backend/internal/ratelimit"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger

	BookingService booking.Service

	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Limiter is optional. Nil disables rate limiting.
	Limiter ratelimit.Limiter
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (request id, logging, metrics, CORS) and registering routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
	}

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
		if len(corsConfig.AllowOrigins) == 0 {
			// No browser origins configured: reject every cross-origin request.
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", auth.HeaderUserID, HeaderRequestID}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	middleware := []gin.HandlerFunc{auth.UserIDRequired()}
	if cfg.Limiter != nil {
		middleware = append(middleware, ratelimit.Middleware(cfg.Limiter))
	}

	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		bookingHttp.RegisterRoutes(v1, bookingHandler, middleware...)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

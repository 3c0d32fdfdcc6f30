package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	charthandler "stock_chart/internal/feature/chart/transport/handler"
	watchlisthandler "stock_chart/internal/feature/watchlist/transport/handler"
	"stock_chart/internal/platform/http/handler"
	"stock_chart/internal/platform/http/middleware"
	jwtmw "stock_chart/internal/platform/jwt"
	"stock_chart/internal/platform/metrics"
)

// Options configures the cross-cutting parts of the router.
type Options struct {
	// AllowedOrigins are the dashboard origins allowed by CORS. Empty disables CORS.
	AllowedOrigins []string
	// JWTSecret guards the data routes. Empty leaves them open.
	JWTSecret   string
	Metrics     *metrics.Metrics
	ReadyChecks []handler.Check
}

// NewRouter builds the gin engine serving charts, the watchlist and the operational endpoints.
func NewRouter(opts Options, chart *charthandler.ChartHandler, symbol *watchlisthandler.SymbolHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(2*time.Second, opts.ReadyChecks...))
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}

	api := r.Group("/")
	if opts.JWTSecret != "" {
		// → リクエストヘッダーに JWT が必要になる
		api.Use(jwtmw.AuthRequired(opts.JWTSecret))
	} else {
		slog.Warn("JWT_SECRET is not set; chart routes are unauthenticated")
	}
	{
		api.GET("/charts/:symbol", chart.GetChart)
		api.GET("/symbols", symbol.List)
	}

	return r
}

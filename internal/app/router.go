package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	BookingLimiter *RateLimiter
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Router builds the gin engine with every route and middleware.
func (a *App) Router(rc RouterConfig) *gin.Engine {
	gatherer := rc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(
		RequestID(),
		RequestLogger(a.Logger, a.Metrics),
		Recovery(a.Logger),
		cors.New(corsConfig(rc.AllowedOrigins)),
	)

	router.GET("/health", a.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/services", a.ServicesHandler)
		api.GET("/availability", a.AvailabilityHandler)
		api.GET("/instagram", a.InstagramHandler)

		book := []gin.HandlerFunc{a.BookHandler}
		if rc.BookingLimiter != nil {
			book = append([]gin.HandlerFunc{rc.BookingLimiter.Middleware()}, book...)
		}
		api.POST("/book", book...)
	}

	return router
}

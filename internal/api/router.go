package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-tracker-backend/internal/mw"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"
)

// RouterOptions bundles the tunables NewRouter needs beyond its collaborators.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	IndexFile       string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, hub *ws.Hub, webpushOptions *webpush.Options, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, hub, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	r.GET("/api/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Real-time subscribers; not rate limited, a subscription is one request.
	r.GET("/ws/locations", func(c *gin.Context) {
		hub.HandleUpgrade(c.Writer, c.Request)
	})

	if opts.IndexFile != "" {
		r.StaticFile("/", opts.IndexFile)
	}

	api := r.Group("/api/v1")
	api.Use(rateLimiter)
	{
		api.POST("/location_update", handler.PostLocationUpdate)

		// The fleet is immutable after seeding, so the list caches well.
		api.GET("/vehicles", caching, GetVehicles(db))

		api.GET("/history", GetHistory(db))

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

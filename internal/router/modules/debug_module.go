package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-payments/internal/interface/middleware"
)

type DebugModule struct {
	Redis    *redis.Client
	Expvar   bool
	Gatherer prometheus.Gatherer
}

// NewDebugModule serves expvar when expvarOn is set and Prometheus metrics
// when gatherer is non-nil.
func NewDebugModule(rdb *redis.Client, expvarOn bool, gatherer prometheus.Gatherer) *DebugModule {
	return &DebugModule{Redis: rdb, Expvar: expvarOn, Gatherer: gatherer}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Rate-limited per IP; scrapers on private networks bypass it.
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	if m.Expvar {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
	if m.Gatherer != nil {
		rg.GET("/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	}
}

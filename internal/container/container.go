package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-payments/config"
	"github.com/oksasatya/go-ddd-payments/internal/domain/gateway"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/metrics"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	processor gateway.Processor
	verifier  gateway.SignatureVerifier
	publisher gateway.EventPublisher

	collector metrics.Collector
	gatherer  prometheus.Gatherer
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }
func SetRedis(r *redis.Client)  { redisClient = r }
func GetRedis() *redis.Client   { return redisClient }

// SetJWT enables bearer auth on the orchestration routes; nil leaves them open.
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetProcessor(p gateway.Processor)         { processor = p }
func GetProcessor() gateway.Processor          { return processor }
func SetVerifier(v gateway.SignatureVerifier)  { verifier = v }
func GetVerifier() gateway.SignatureVerifier   { return verifier }
func SetPublisher(p gateway.EventPublisher)    { publisher = p }
func GetPublisher() gateway.EventPublisher     { return publisher }
func SetMetrics(c metrics.Collector)           { collector = c }
func SetMetricsGatherer(g prometheus.Gatherer) { gatherer = g }
func GetMetricsGatherer() prometheus.Gatherer  { return gatherer }
func GetMetrics() metrics.Collector {
	if collector != nil {
		return collector
	}
	return metrics.NoOp{}
}

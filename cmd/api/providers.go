package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/librarydesk/internal/application/report"
	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/config"
	"github.com/xiebiao/librarydesk/internal/infrastructure/messaging"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/librarydesk/internal/interface/http/handler"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
	"github.com/xiebiao/librarydesk/internal/interface/http/router"
	"github.com/xiebiao/librarydesk/pkg/clock"
	"github.com/xiebiao/librarydesk/pkg/jwt"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

// App 组装完成的应用
type App struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Publisher messaging.Publisher
}

func newApp(engine *gin.Engine, db *gorm.DB, publisher messaging.Publisher) *App {
	return &App{Engine: engine, DB: db, Publisher: publisher}
}

// provideDB 数据库连接,cleanup时关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := rdb.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis Redis客户端,cleanup时关闭
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// providePublisher mq.enabled=false时使用NopPublisher
func providePublisher(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (messaging.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	p, err := messaging.NewAMQPPublisher(cfg.MQ.URL, cfg.MQ.Exchange, m, log)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

// provideRegistry 独立的指标注册表,附带Go运行时和进程指标
func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// provideMetrics 创建指标,books_on_loan从当前未还记录数开始计数
func provideMetrics(reg *prometheus.Registry, txns transaction.Repository, log *zap.Logger) *metrics.Metrics {
	m := metrics.New(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	onLoan, err := txns.CountByStatus(ctx, transaction.StatusIssued)
	if err != nil {
		log.Warn("初始化借出数指标失败", zap.Error(err))
		return m
	}
	m.SetBooksOnLoan(onLoan)
	return m
}

func provideClock() clock.Clock {
	return clock.Real()
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := cfg.Fine.Location()
	if err != nil {
		return nil, fmt.Errorf("无效的时区%q: %w", cfg.Fine.Timezone, err)
	}
	return loc, nil
}

func provideFinePolicy(cfg *config.Config, loc *time.Location) transaction.FinePolicy {
	return transaction.FinePolicy{PerDay: cfg.Fine.PerDay, Location: loc}
}

func provideLoanPolicy(cfg *config.Config, loc *time.Location) handler.LoanPolicy {
	return handler.LoanPolicy{DefaultDays: cfg.Circulation.DefaultLoanDays, Location: loc}
}

func provideStatsCache(client *goredis.Client, m *metrics.Metrics, log *zap.Logger) *redis.JSONCache {
	return redis.NewJSONCache(client, "stats", m, log)
}

func provideDashboardStats(
	books book.Repository,
	users user.Repository,
	txns transaction.Repository,
	cache report.Cache,
	cfg *config.Config,
	clk clock.Clock,
	loc *time.Location,
	log *zap.Logger,
) *report.DashboardStatsUseCase {
	return report.NewDashboardStatsUseCase(books, users, txns, cache, cfg.Cache.StatsTTL, clk, loc, log)
}

func provideUserService(repo user.Repository, txns transaction.Repository, tx *rdb.TxManager) user.Service {
	return user.NewService(repo, txns, tx)
}

func provideBookService(repo book.Repository, txns transaction.Repository, tx *rdb.TxManager) book.Service {
	return book.NewService(repo, txns, tx)
}

func provideHandlers(
	u *handler.UserHandler,
	b *handler.BookHandler,
	t *handler.TransactionHandler,
	d *handler.DashboardHandler,
) router.Handlers {
	return router.Handlers{User: u, Book: b, Transaction: t, Dashboard: d}
}

func provideEngine(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	reg *prometheus.Registry,
	h router.Handlers,
	auth *middleware.AuthMiddleware,
) *gin.Engine {
	return router.New(cfg, log, m, reg, h, auth)
}

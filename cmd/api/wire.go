//go:build wireinject
// +build wireinject

// wire依赖注入配置,修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/librarydesk/internal/application/book"
	"github.com/xiebiao/librarydesk/internal/application/circulation"
	"github.com/xiebiao/librarydesk/internal/application/report"
	appuser "github.com/xiebiao/librarydesk/internal/application/user"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/config"
	"github.com/xiebiao/librarydesk/internal/infrastructure/messaging"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/librarydesk/internal/interface/http/handler"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
)

// infrastructureSet 数据库、Redis、消息、指标
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	providePublisher,
	provideRegistry,
	provideMetrics,
	provideClock,
	provideLocation,
	provideStatsCache,
	redis.NewSessionStore,
)

// repositorySet 仓储与事务
var repositorySet = wire.NewSet(
	rdb.NewUserRepository,
	rdb.NewBookRepository,
	rdb.NewTransactionRepository,
	rdb.NewInventoryLedger,
	rdb.NewTxManager,
	transaction.NewULIDGenerator,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	provideBookService,
	provideFinePolicy,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewCreateMemberUseCase,
	appuser.NewListMembersUseCase,
	appuser.NewDeleteMemberUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewRestockBookUseCase,
	circulation.NewIssueBookUseCase,
	circulation.NewReturnBookUseCase,
	report.NewListTransactionsUseCase,
	report.NewMyHistoryUseCase,
	report.NewGetTransactionUseCase,
	report.NewStatsCache,
	provideDashboardStats,

	wire.Bind(new(circulation.Transactor), new(*rdb.TxManager)),
	wire.Bind(new(appbook.Transactor), new(*rdb.TxManager)),
	wire.Bind(new(circulation.MemberResolver), new(user.Repository)),
	wire.Bind(new(circulation.EventPublisher), new(messaging.Publisher)),
	wire.Bind(new(circulation.StatsInvalidator), new(*report.StatsCache)),
	wire.Bind(new(appbook.StatsInvalidator), new(*report.StatsCache)),
	wire.Bind(new(appuser.StatsInvalidator), new(*report.StatsCache)),
	wire.Bind(new(report.Cache), new(*redis.JSONCache)),
)

// httpSet 中间件、处理器、路由
var httpSet = wire.NewSet(
	provideJWTManager,
	provideLoanPolicy,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewTransactionHandler,
	handler.NewDashboardHandler,
	provideHandlers,
	provideEngine,
)

// InitializeApp 组装应用,cleanup按创建的逆序关闭资源
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		httpSet,
		newApp,
	)
	return nil, nil, nil
}

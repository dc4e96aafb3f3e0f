// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/infrastructure/config"
	"github.com/xiebiao/librarydesk/internal/interface/http/handler"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
	"github.com/xiebiao/librarydesk/pkg/metrics"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	User        *handler.UserHandler
	Book        *handler.BookHandler
	Transaction *handler.TransactionHandler
	Dashboard   *handler.DashboardHandler
}

// New 创建Gin引擎并注册路由
//
//	/ping, /metrics, /swagger/*any
//	/api/v1/auth/*           公开(logout需登录)
//	/api/v1/books            登录可查,馆员可写
//	/api/v1/users            馆员可查可建,管理员可删
//	/api/v1/transactions     馆员借还,学生只看自己的
//	/api/v1/dashboard/stats  登录可查
func New(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
	auth *middleware.AuthMiddleware,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.User.Register)
		authGroup.POST("/login", h.User.Login)
		authGroup.POST("/logout", auth.RequireAuth(), h.User.Logout)
	}

	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())

	books := authorized.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/:id", h.Book.GetBook)

		staff := books.Group("", middleware.RequireStaff())
		staff.POST("", h.Book.AddBook)
		staff.PUT("/:id", h.Book.UpdateBook)
		staff.DELETE("/:id", h.Book.DeleteBook)
		staff.POST("/:id/restock", h.Book.RestockBook)
	}

	users := authorized.Group("/users", middleware.RequireStaff())
	{
		users.GET("", h.User.ListMembers)
		users.POST("", middleware.RequireAdmin(), h.User.CreateMember)
		users.DELETE("/:id", middleware.RequireAdmin(), h.User.DeleteMember)
	}

	txns := authorized.Group("/transactions")
	{
		txns.GET("/my-history", h.Transaction.MyHistory)
		txns.GET("/:id", h.Transaction.GetTransaction)

		staff := txns.Group("", middleware.RequireStaff())
		staff.POST("/issue", h.Transaction.IssueBook)
		staff.PUT("/return/:id", h.Transaction.ReturnBook)
		staff.GET("", h.Transaction.ListTransactions)
	}

	authorized.GET("/dashboard/stats", h.Dashboard.Stats)

	return r
}

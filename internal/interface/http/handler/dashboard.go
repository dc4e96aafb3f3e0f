package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/librarydesk/internal/application/report"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// DashboardHandler 仪表盘
type DashboardHandler struct {
	statsUseCase *report.DashboardStatsUseCase
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(statsUseCase *report.DashboardStatsUseCase) *DashboardHandler {
	return &DashboardHandler{statsUseCase: statsUseCase}
}

// Stats 仪表盘统计
// @Summary      仪表盘统计
// @Description  图书种数、会员数、借出中、今日归还、逾期数,结果短暂缓存在Redis
// @Tags         仪表盘
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=report.DashboardStats}
// @Router       /api/v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	result, err := h.statsUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro/internal/model"
	"bistro/internal/service"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	reportService *service.ReportService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(reportService *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// Dashboard 仪表盘页面
// @Summary      仪表盘
// @Description  展示最近对话转录、饮食分布与每种饮食的食物排行
// @Tags         仪表盘
// @Produce      html
// @Param        ran  query     int  false  "刚完成的模拟次数（来自运行重定向）"
// @Success      200  {string}  string
// @Failure      401  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /dashboard/ [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	data, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to build dashboard",
			Detail:  err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title": "Dashboard",
		"ran":   c.Query("ran"),
		"data":  data,
	})
}

// DashboardData 仪表盘数据接口
// @Summary      仪表盘数据
// @Description  以 JSON 返回仪表盘聚合数据
// @Tags         仪表盘
// @Produce      json
// @Success      200  {object}  service.DashboardData
// @Failure      401  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /dashboard/data/ [get]
func (h *DashboardHandler) DashboardData(c *gin.Context) {
	data, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to build dashboard",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}

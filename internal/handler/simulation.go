package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bistro/internal/model"
	"bistro/internal/service"
)

// SimulationHandler 对话模拟与查询处理器
type SimulationHandler struct {
	simService    *service.SimulationService
	reportService *service.ReportService
	exportService *service.ExportService
}

// NewSimulationHandler 创建对话模拟处理器
func NewSimulationHandler(
	simService *service.SimulationService,
	reportService *service.ReportService,
	exportService *service.ExportService,
) *SimulationHandler {
	return &SimulationHandler{
		simService:    simService,
		reportService: reportService,
		exportService: exportService,
	}
}

// Latest 查询最近的模拟对话
// @Summary      最近对话列表
// @Description  按创建时间倒序返回最近的模拟对话，支持 CSV 导出与归档
// @Tags         模拟
// @Produce      json
// @Param        limit    query     int     false  "条数上限 (1-500)"  default(100)
// @Param        format   query     string  false  "导出格式 (csv)"
// @Param        archive  query     int     false  "设为1时把CSV上传到归档存储"
// @Success      200     {object}  model.ListResponse
// @Failure      401     {object}  model.ErrorResponse
// @Failure      500     {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /simulations/latest/ [get]
func (h *SimulationHandler) Latest(c *gin.Context) {
	limit := clampInt(c.Query("limit"), service.DefaultExportCount, 1, service.MaxExportCount)

	convs, err := h.reportService.Latest(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to query conversations",
			Detail:  err.Error(),
		})
		return
	}

	if c.Query("format") == "csv" {
		h.renderCSV(c, convs)
		return
	}

	c.JSON(http.StatusOK, model.ListResponse{
		Count: len(convs),
		Items: convs,
	})
}

// renderCSV 以 CSV 形式返回对话列表，可选上传归档
func (h *SimulationHandler) renderCSV(c *gin.Context, convs []*model.Conversation) {
	data, err := h.exportService.BuildCSV(convs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50003,
			Message: "Failed to build CSV",
			Detail:  err.Error(),
		})
		return
	}

	if c.Query("archive") == "1" && h.exportService.Enabled() {
		url, err := h.exportService.Archive(c.Request.Context(), data)
		if err != nil {
			log.Warn().Err(err).Msg("failed to archive CSV export")
		} else {
			c.Header("X-Archive-URL", url)
		}
	}

	c.Header("Content-Disposition", `attachment; filename="conversations.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Run 同步运行一批模拟对话
// @Summary      运行模拟
// @Description  同步模拟 count 次对话后重定向到仪表盘
// @Tags         模拟
// @Produce      json
// @Param        count      formData  int     false  "模拟次数 (1-100)"  default(100)
// @Param        diet-mode  formData  string  false  "饮食来源策略 (self/rules/llm)"  default(self)
// @Success      303  {string}  string  "重定向到 /dashboard/?ran=count"
// @Failure      401  {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /simulations/run/ [post]
func (h *SimulationHandler) Run(c *gin.Context) {
	// FormValue 同时覆盖查询参数与表单体
	count := clampInt(c.Request.FormValue("count"), service.DefaultRunCount, 1, service.MaxRunCount)
	mode := service.ParseDietMode(c.Request.FormValue("diet-mode"))

	result := h.simService.RunBatch(c.Request.Context(), count, mode)
	if result.Succeeded > 0 {
		h.reportService.InvalidateDashboard(c.Request.Context())
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/dashboard/?ran=%d", count))
}

// Delete 删除一次模拟对话
// @Summary      删除对话
// @Description  删除指定对话并级联删除其全部消息
// @Tags         模拟
// @Param        id  path  string  true  "对话ID"
// @Success      204  {string}  string  "No Content"
// @Failure      401  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /simulations/{id}/ [delete]
func (h *SimulationHandler) Delete(c *gin.Context) {
	if err := h.simService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to delete conversation",
			Detail:  err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Vegetarians 查询素食倾向的对话
// @Summary      素食对话列表
// @Description  返回 diet 为 vegetarian 或 vegan 的全部对话
// @Tags         模拟
// @Produce      json
// @Success      200  {object}  model.ListResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Security     BasicAuth
// @Router       /vegetarians/ [get]
func (h *SimulationHandler) Vegetarians(c *gin.Context) {
	convs, err := h.reportService.VegetarianSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to query conversations",
			Detail:  err.Error(),
		})
		return
	}

	items := make([]model.VegetarianItem, 0, len(convs))
	for _, conv := range convs {
		items = append(items, model.VegetarianItem{
			CustomerLabel: conv.CustomerLabel,
			Diet:          conv.Diet,
			FavoriteFoods: conv.FavoriteFoods,
		})
	}

	c.JSON(http.StatusOK, model.ListResponse{
		Count: len(items),
		Items: items,
	})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro/internal/ai"
	"bistro/internal/model"
	"bistro/internal/service"
)

// ChatHandler 聊天机器人处理器
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建聊天机器人处理器
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Page 聊天页面
// @Summary      聊天页面
// @Description  渲染聊天机器人交互页面
// @Tags         聊天
// @Produce      html
// @Success      200  {string}  string
// @Router       /chatbot/ [get]
func (h *ChatHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "chatbot.html", gin.H{
		"title": "Chatbot",
	})
}

// Chat 聊天接口
// @Summary      聊天接口
// @Description  把用户消息透传给模型，返回服务员人设的单条回复
// @Tags         聊天
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChatRequest  true  "用户消息"
// @Success      200     {object}  model.ChatResponse
// @Failure      400     {object}  model.ErrorResponse
// @Failure      500     {object}  model.ErrorResponse
// @Failure      502     {object}  model.ErrorResponse
// @Router       /chatbot/ [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), req.Message)
	if err != nil {
		status := http.StatusBadGateway
		code := 50201
		if errors.Is(err, ai.ErrAPIKeyMissing) {
			status = http.StatusInternalServerError
			code = 50001
		}
		c.JSON(status, model.ErrorResponse{
			Code:    code,
			Message: "Failed to generate reply",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Reply: reply})
}

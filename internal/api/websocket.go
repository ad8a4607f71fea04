// internal/api/websocket.go
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 单用户本地工具，不做来源限制
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// wsMessage 流式生成过程中推送给前端的消息
type wsMessage struct {
	Type    string      `json:"type"` // "chunk" | "complete" | "error"
	Text    string      `json:"text,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// GenerateStream 通过WebSocket流式执行全篇生成
// 客户端连接后发送一条GenerateRequest，之后收到累计文本的chunk消息，
// 生成完成时收到complete消息和完整会话状态
func (h *Handler) GenerateStream(c *gin.Context) {
	logger := utils.GetLogger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket升级失败", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	var req GenerateRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeWSMessage(conn, nil, wsMessage{Type: "error", Message: "请求格式错误: " + err.Error()})
		return
	}

	input := models.SourceInput{
		School:        req.School,
		Major:         req.Major,
		StatementText: req.StatementText,
		CourseText:    req.CourseText,
		StrategyText:  req.StrategyText,
		Images:        req.Images,
	}

	// onFlush在生成goroutine里调用，写锁保护并发写
	var writeMu sync.Mutex
	onFlush := func(accumulated string) {
		writeWSMessage(conn, &writeMu, wsMessage{Type: "chunk", Text: accumulated})
	}

	if _, err := h.StatementService.Generate(c.Request.Context(), input, onFlush); err != nil {
		writeWSMessage(conn, &writeMu, wsMessage{Type: "error", Message: err.Error()})
		return
	}

	writeWSMessage(conn, &writeMu, wsMessage{Type: "complete", Data: h.sessionData()})
}

// writeWSMessage 带超时的安全写入
func writeWSMessage(conn *websocket.Conn, mu *sync.Mutex, msg wsMessage) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		utils.GetLogger().Warn("WebSocket写入失败", map[string]interface{}{"error": err.Error()})
	}
}

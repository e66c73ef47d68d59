package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

type messageService interface {
	Create(ctx context.Context, req dto.CreateMessageRequest) (*models.Message, error)
	List(ctx context.Context, complaintID string) ([]models.Message, error)
	Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error)
}

type streamMetrics interface {
	StreamOpened()
	StreamClosed()
}

// MessageHandler exposes complaint chat endpoints.
type MessageHandler struct {
	service  messageService
	metrics  streamMetrics
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewMessageHandler constructs a message handler. Websocket upgrades are accepted from
// allowedOrigins and from clients that send no Origin header.
func NewMessageHandler(svc messageService, metrics streamMetrics, allowedOrigins []string, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	h := &MessageHandler{service: svc, metrics: metrics, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := origins["*"]; ok {
				return true
			}
			_, ok := origins[origin]
			if !ok {
				logger.Warn("websocket origin rejected", zap.String("origin", origin))
			}
			return ok
		},
	}
	return h
}

// Create godoc
// @Summary Post chat message
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateMessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Create(c *gin.Context) {
	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, message, nil)
}

// List godoc
// @Summary Chat thread of a complaint
// @Description Newest message first.
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param complaintId path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /messages/{complaintId} [get]
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.service.List(c.Request.Context(), c.Param("complaintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Stream godoc
// @Summary Live chat stream
// @Description Upgrades to a websocket that receives each message created on the complaint as JSON.
// @Tags Messages
// @Security BearerAuth
// @Param complaintId path string true "Complaint ID"
// @Success 101
// @Failure 501 {object} response.Envelope
// @Router /messages/{complaintId}/stream [get]
func (h *MessageHandler) Stream(c *gin.Context) {
	complaintID := c.Param("complaintId")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, err := h.service.Subscribe(ctx, complaintID)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("complaint_id", complaintID), zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.StreamOpened()
		defer h.metrics.StreamClosed()
	}

	// The client only sends control frames; a read error means it went away.
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(streamWriteWait))
			return
		case message, ok := <-messages:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(message); err != nil {
				h.logger.Debug("chat stream write failed", zap.String("complaint_id", complaintID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

package websocket

import (
	"context"
	"net/http"

	"github.com/aescanero/awo/pkg/domain"
	"github.com/aescanero/awo/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same posture as the CORS middleware
	},
}

// Handler handles WebSocket connections.
type Handler struct {
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(eventBus ports.EventBus, logger *zap.Logger) *Handler {
	return &Handler{
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleWorkflowStream streams the telemetry events of one workflow
// until the client disconnects.
func (h *Handler) HandleWorkflowStream(c *gin.Context) {
	workflowID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("workflow_id", workflowID),
		zap.String("client", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventChan := make(chan ports.Event, 10)
	err = h.eventBus.Subscribe(ctx, domain.TopicWorkflow, func(_ context.Context, event ports.Event) error {
		if event.ExecutionID != workflowID {
			return nil
		}
		select {
		case eventChan <- event:
		case <-ctx.Done():
		default:
			// Slow client; drop rather than block the bus.
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to subscribe to workflow events",
			zap.String("workflow_id", workflowID),
			zap.Error(err))
		return
	}

	// Read pump: detect client disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventChan:
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("WebSocket write failed, closing",
					zap.String("workflow_id", workflowID),
					zap.Error(err))
				return
			}
			if event.Type == domain.EventTypeWorkflowCompleted {
				return
			}
		}
	}
}

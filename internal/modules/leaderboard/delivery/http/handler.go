package handler

import (
	"log"
	"net/http"

	"anoa.com/typingarena/internal/modules/leaderboard/service"
	"anoa.com/typingarena/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type LeaderboardHandler struct {
	service     service.LeaderboardService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewLeaderboardHandler(svc service.LeaderboardService, redisClient *redis.Client) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:     svc,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// RefreshLeaderboard regenerates the snapshot on demand, in addition to the
// scheduled worker.
func (h *LeaderboardHandler) RefreshLeaderboard(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}

	entries, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// WebSocket Endpoint

// HandleWebSocket streams every published snapshot to the client. Payloads
// arrive pre-serialized on the updates channel and are forwarded as-is.
func (h *LeaderboardHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	if h.redisClient == nil {
		log.Println("Redis client is nil, cannot subscribe")
		return
	}

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.UpdatesChannel)
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				// Client disconnected or error
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

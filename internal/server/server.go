package server

import (
	"errors"
	"gato/Gato-Game/internal/api/controller"
	"gato/Gato-Game/internal/api/middleware"
	"gato/Gato-Game/internal/api/response"
	"gato/Gato-Game/internal/api/service"
	"gato/Gato-Game/internal/hub"
	"gato/Gato-Game/internal/room"
	"gato/Gato-Game/internal/session"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	hub      *hub.Hub
	sessions *session.Service
	tokens   *service.TokenService
	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, sessions *session.Service, tokens *service.TokenService) *Server {
	s := &Server{
		engine:   gin.New(),
		hub:      h,
		sessions: sessions,
		tokens:   tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.RegisterHandlers()
	return s
}

// Engine returns the gin engine serving every route.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterHandlers() {
	s.engine.Use(gin.Recovery(), middleware.RequestLogger())

	sessionController := controller.NewSessionController(s.sessions, s.tokens)

	api := s.engine.Group("/api")
	api.POST("/sessions", sessionController.Create)

	me := api.Group("/sessions/me", middleware.RequireSession(s.tokens))
	me.GET("", sessionController.Get)
	me.POST("/start", sessionController.Start)
	me.POST("/moves", sessionController.Play)
	me.POST("/reset", sessionController.Reset)
	me.PUT("/difficulty", sessionController.ChangeDifficulty)
	me.POST("/menu", sessionController.BackToMenu)

	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *gin.Context) {
	response.SuccessResponse(c, gin.H{
		"status":      "ok",
		"connections": s.hub.Connections(),
	})
}

// handleWebSocket authenticates the token query parameter, upgrades the
// connection and serves the session's room until the client leaves.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))

	sessionID, err := s.tokens.Parse(c.Query("token"))
	if err != nil {
		slog.WarnContext(ctx, "Rejected websocket token", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid session token")
		span.End()
		response.ErrorResponse(c, http.StatusUnauthorized, "invalid session token")
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		span.End()
		return
	}
	span.End()

	r := room.NewRoom(sessionID, conn, s.sessions)
	if err := s.hub.Serve(c.Request.Context(), r); err != nil && !errors.Is(err, hub.ErrHubStopped) {
		slog.WarnContext(ctx, "Websocket session ended with error", "session.id", sessionID, "error", err)
	}
}

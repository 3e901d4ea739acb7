package controller

import (
	"errors"
	"gato/Gato-Game/internal/api/middleware"
	"gato/Gato-Game/internal/api/models"
	"gato/Gato-Game/internal/api/response"
	"gato/Gato-Game/internal/api/service"
	"gato/Gato-Game/internal/bot"
	domain "gato/Gato-Game/internal/models"
	"gato/Gato-Game/internal/repository"
	"gato/Gato-Game/internal/session"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessions *session.Service
	tokens   *service.TokenService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessions *session.Service, tokens *service.TokenService) *SessionController {
	return &SessionController{
		sessions: sessions,
		tokens:   tokens,
	}
}

// Create handles the session creation endpoint.
func (sc *SessionController) Create(c *gin.Context) {
	sess, err := sc.sessions.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := sc.tokens.Issue(sess.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.CreatedResponse(c, models.CreateSessionResponse{Session: sess, Token: token})
}

// Get returns the caller's session.
func (sc *SessionController) Get(c *gin.Context) {
	sess, err := sc.sessions.Get(c.Request.Context(), middleware.SessionID(c))
	writeSession(c, sess, err)
}

// Start starts a game from the menu.
func (sc *SessionController) Start(c *gin.Context) {
	sess, err := sc.sessions.Start(c.Request.Context(), middleware.SessionID(c))
	writeSession(c, sess, err)
}

// Play places the human's mark and returns the state after the computer answered.
func (sc *SessionController) Play(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := sc.sessions.Play(c.Request.Context(), middleware.SessionID(c), *req.Position)
	writeSession(c, sess, err)
}

// Reset restarts the current game.
func (sc *SessionController) Reset(c *gin.Context) {
	sess, err := sc.sessions.Reset(c.Request.Context(), middleware.SessionID(c))
	writeSession(c, sess, err)
}

// ChangeDifficulty switches between normal and hard.
func (sc *SessionController) ChangeDifficulty(c *gin.Context) {
	var req models.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := sc.sessions.ChangeDifficulty(c.Request.Context(), middleware.SessionID(c), bot.Difficulty(req.Difficulty))
	writeSession(c, sess, err)
}

// BackToMenu leaves the game screen.
func (sc *SessionController) BackToMenu(c *gin.Context) {
	sess, err := sc.sessions.BackToMenu(c.Request.Context(), middleware.SessionID(c))
	writeSession(c, sess, err)
}

func writeSession(c *gin.Context, sess *domain.Session, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessResponse(c, models.SessionResponse{
		Session: sess,
		Message: session.ResultMessage(sess.Outcome, sess.HumanMark),
	})
}

// writeError maps service errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrIllegalMove), errors.Is(err, bot.ErrUnknownDifficulty):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotStarted), errors.Is(err, session.ErrGameOver), errors.Is(err, session.ErrNotYourTurn):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

package http_session

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/NicolasKocher/sprint-poker/internal/delivery/http/common"
	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
	"github.com/gin-gonic/gin"
)

// Controller is the room mutation endpoint: GET returns the current record,
// POST carries a named action in the body and returns the updated record.
type Controller struct {
	usecase *usecase_session.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_session.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.GET("/:code", c.get)
		sessions.POST("/:code", c.mutate)
	}
}

type ParticipantDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MutationRequestDTO is the action-dispatch POST body. Field requirements
// depend on the action: create/join need user, leave/vote need userId, vote
// needs size.
type MutationRequestDTO struct {
	Action string          `json:"action" binding:"required"`
	User   *ParticipantDTO `json:"user"`
	UserID string          `json:"userId"`
	Size   string          `json:"size"`
}

type DeletedResponseDTO struct {
	Deleted bool `json:"deleted"`
}

func (c *Controller) get(ctx *gin.Context) {
	code, ok := c.roomCode(ctx)
	if !ok {
		return
	}

	session, err := c.usecase.Get(ctx, code)
	if err != nil {
		c.respondError(ctx, "failed to get session", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) mutate(ctx *gin.Context) {
	code, ok := c.roomCode(ctx)
	if !ok {
		return
	}

	var req MutationRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: "invalid request format",
		})
		return
	}

	switch req.Action {
	case "create":
		c.create(ctx, code, req)
	case "join":
		c.join(ctx, code, req)
	case "leave":
		c.leave(ctx, code, req)
	case "startVoting":
		c.startVoting(ctx, code)
	case "finishVoting":
		c.finishVoting(ctx, code)
	case "resetVoting":
		c.resetVoting(ctx, code)
	case "vote":
		c.vote(ctx, code, req)
	default:
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: "unknown action: " + req.Action,
		})
	}
}

func (c *Controller) create(ctx *gin.Context, code model.RoomCode, req MutationRequestDTO) {
	user, ok := c.participant(ctx, req)
	if !ok {
		return
	}

	session, err := c.usecase.Create(ctx, code, user)
	if err != nil {
		c.respondError(ctx, "failed to create session", err)
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

func (c *Controller) join(ctx *gin.Context, code model.RoomCode, req MutationRequestDTO) {
	user, ok := c.participant(ctx, req)
	if !ok {
		return
	}

	session, err := c.usecase.Join(ctx, code, user)
	if err != nil {
		c.respondError(ctx, "failed to join session", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) leave(ctx *gin.Context, code model.RoomCode, req MutationRequestDTO) {
	if req.UserID == "" {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: "userId required",
		})
		return
	}

	session, deleted, err := c.usecase.Leave(ctx, code, req.UserID)
	if err != nil {
		c.respondError(ctx, "failed to leave session", err)
		return
	}

	if deleted {
		ctx.JSON(http.StatusOK, DeletedResponseDTO{Deleted: true})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) startVoting(ctx *gin.Context, code model.RoomCode) {
	session, err := c.usecase.StartVoting(ctx, code)
	if err != nil {
		c.respondError(ctx, "failed to start voting", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) finishVoting(ctx *gin.Context, code model.RoomCode) {
	session, err := c.usecase.FinishVoting(ctx, code)
	if err != nil {
		c.respondError(ctx, "failed to finish voting", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) resetVoting(ctx *gin.Context, code model.RoomCode) {
	session, err := c.usecase.ResetVoting(ctx, code)
	if err != nil {
		c.respondError(ctx, "failed to reset voting", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) vote(ctx *gin.Context, code model.RoomCode, req MutationRequestDTO) {
	session, err := c.usecase.CastVote(ctx, code, req.UserID, model.TShirtSize(req.Size))
	if err != nil {
		c.respondError(ctx, "failed to cast vote", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *Controller) roomCode(ctx *gin.Context) (model.RoomCode, bool) {
	code := model.NormalizeRoomCode(ctx.Param("code"))
	if !code.Valid() {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: "invalid room code",
		})
		return model.EmptyRoomCode, false
	}
	return code, true
}

func (c *Controller) participant(ctx *gin.Context, req MutationRequestDTO) (model.Participant, bool) {
	if req.User == nil || req.User.ID == "" || req.User.Name == "" {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: "invalid user data",
		})
		return model.Participant{}, false
	}
	return model.Participant{ID: req.User.ID, Name: req.User.Name}, true
}

func (c *Controller) respondError(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, usecase_session.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Error: "Session not found",
		})
	case errors.Is(err, usecase_session.ErrInvalidState),
		errors.Is(err, usecase_session.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Error: err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Error:   "internal error",
			Details: err.Error(),
		})
	}
}

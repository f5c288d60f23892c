package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const createAttempts = 5

type roomHandlers struct {
	orch *orch.Orchestrator
	dir  core.RoomDirectory
}

type createRoomRequest struct {
	HostID string `json:"hostId" binding:"required"`
	Code   string `json:"code"`
}

// GET /api/rooms lists live rooms with their connection counts.
func (h *roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

// POST /api/rooms creates a room, generating a code unless one is given.
func (h *roomHandlers) create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hostId is required"})
		return
	}
	host := domain.VoterID(req.HostID)
	if err := host.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Code != "" {
		code, err := domain.ParseRoomCode(req.Code)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.createWithCode(c, code, host, false)
		return
	}
	h.createWithCode(c, domain.NewRoomCode(), host, true)
}

func (h *roomHandlers) createWithCode(c *gin.Context, code domain.RoomCode, host domain.VoterID, generated bool) {
	for attempt := 1; ; attempt++ {
		room := domain.Room{Code: code, HostID: host, CreatedAt: time.Now().UTC()}
		err := h.dir.CreateRoom(c.Request.Context(), room)
		switch {
		case err == nil:
			log.Info().Str("module", "adapters.http").Str("room", string(code)).Str("host", string(host)).Msg("room created")
			c.JSON(http.StatusCreated, room)
			return
		case errors.Is(err, domain.ErrRoomExists) && generated && attempt < createAttempts:
			code = domain.NewRoomCode()
		case errors.Is(err, domain.ErrRoomExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		default:
			log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("create room")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}
	}
}

// GET /api/rooms/:code
func (h *roomHandlers) get(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	room, err := h.dir.GetRoom(c.Request.Context(), code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, room)
	case errors.Is(err, domain.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("get room")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	}
}

// DELETE /api/rooms/:code disconnects every connection in the room.
// Votes and the directory record are kept.
func (h *roomHandlers) evict(c *gin.Context) {
	h.orch.EvictRoom(domain.RoomCode(c.Param("code")))
	c.Status(http.StatusNoContent)
}

// GET /api/rooms/:code/leaderboard?limit=N
func (h *roomHandlers) leaderboard(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	entries, err := h.orch.Leaderboard(c.Request.Context(), code, limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("leaderboard")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"roomCode": code, "entries": entries})
}

// GET /api/rooms/:code/members
func (h *roomHandlers) members(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	c.JSON(http.StatusOK, gin.H{"roomCode": code, "users": h.orch.Members.MembersOf(code)})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetsim/internal/duel"
	"fleetsim/internal/store"
)

type DuelRequest struct {
	Seed     int64        `json:"seed"`
	A        duel.Entrant `json:"a"`
	B        duel.Entrant `json:"b"`
	MaxTurns int          `json:"max_turns"`
	Record   bool         `json:"record"`
}

type TournamentRequest struct {
	Seed     int64          `json:"seed"`
	Entrants []duel.Entrant `json:"entrants"`
	MaxTurns int            `json:"max_turns"`
}

type TournamentResponse struct {
	ID string `json:"id"`
	*duel.TournamentResult
}

// ListModels returns the ship model codes.
func (h *Handler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.registry.Codes()})
}

// CreateDuel plays a duel and stores it. Identical requests in flight share one run.
func (h *Handler) CreateDuel(c *gin.Context) {
	var req DuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: "invalid duel request"})
		return
	}
	key, _ := json.Marshal(req)
	out, err, shared := h.duels.Do(string(key), func() (any, error) {
		// The run is shared by every collapsed request, so no single client may cancel it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.runTimeout)
		defer cancel()
		res, err := duel.Run(ctx, duel.Setup{
			ID:       uuid.NewString(),
			Seed:     req.Seed,
			A:        req.A,
			B:        req.B,
			MaxTurns: req.MaxTurns,
			Record:   req.Record,
			Registry: h.registry,
			AI:       h.ai,
			Logger:   h.diag,
		})
		if err != nil {
			return nil, err
		}
		if _, err := h.repo.SaveDuel(res); err != nil {
			h.diag.Error("failed to save duel", zap.String("duel", res.ID), zap.Error(err))
		}
		return res, nil
	})
	if err != nil {
		c.JSON(runStatus(err), gin.H{JSONKeyError: err.Error()})
		return
	}
	if shared {
		h.diag.Debug("duel request collapsed", zap.Int64("seed", req.Seed))
	}
	c.JSON(http.StatusCreated, out)
}

// ListDuels returns stored duels, newest first. Optional ?limit=N, at most 100.
func (h *Handler) ListDuels(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	recs, err := h.repo.ListDuels(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: "failed to fetch duels"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetDuel(c *gin.Context) {
	rec, err := h.repo.GetDuel(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{JSONKeyError: "duel not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: "failed to fetch duel"})
		return
	}
	res, err := store.DecodeResult(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: "failed to decode duel"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateTournament plays a round robin and stores its standings.
func (h *Handler) CreateTournament(c *gin.Context) {
	var req TournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: "invalid tournament request"})
		return
	}
	t := &duel.Tournament{
		Entrants: req.Entrants,
		Seed:     req.Seed,
		Workers:  h.workers,
		MaxTurns: req.MaxTurns,
		Registry: h.registry,
		AI:       h.ai,
		Logger:   h.diag,
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.runTimeout)
	defer cancel()
	res, err := t.Run(ctx)
	if err != nil {
		c.JSON(runStatus(err), gin.H{JSONKeyError: err.Error()})
		return
	}
	id := uuid.NewString()
	if err := h.repo.SaveStandings(id, res.Standings); err != nil {
		h.diag.Error("failed to save standings", zap.String("tournament", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: "failed to save standings"})
		return
	}
	c.JSON(http.StatusCreated, TournamentResponse{ID: id, TournamentResult: res})
}

func (h *Handler) GetTournament(c *gin.Context) {
	recs, err := h.repo.GetStandings(c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{JSONKeyError: "tournament not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{JSONKeyError: "failed to fetch standings"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// runStatus maps a simulation error to a status code. Interrupted runs are not the
// client's fault.
func runStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

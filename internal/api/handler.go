package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fleetsim/internal/combat"
	"fleetsim/internal/config"
	"fleetsim/internal/store"
)

const (
	RouteDuels          = "/duels"
	RouteDuelByID       = "/duels/:id"
	RouteTournaments    = "/tournaments"
	RouteTournamentByID = "/tournaments/:id"
	RouteModels         = "/models"

	JSONKeyError = "error"
)

// Handler groups the simulation HTTP handlers.
type Handler struct {
	repo     store.Repository
	registry *combat.Registry
	ai       *config.AIConfig
	diag     *zap.Logger
	workers  int

	// runTimeout bounds a duel or tournament run.
	runTimeout time.Duration

	// duels collapses identical concurrent duel requests.
	duels singleflight.Group
}

func NewHandler(repo store.Repository, registry *combat.Registry, aiCfg *config.AIConfig, diag *zap.Logger) *Handler {
	if registry == nil {
		registry = combat.NewRegistry()
	}
	if aiCfg == nil {
		aiCfg = config.DefaultAI()
	}
	if diag == nil {
		diag = zap.NewNop()
	}
	return &Handler{repo: repo, registry: registry, ai: aiCfg, diag: diag, workers: 4, runTimeout: 2 * time.Minute}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET(RouteModels, h.ListModels)
	r.GET(RouteDuels, h.ListDuels)
	r.GET(RouteDuelByID, h.GetDuel)
	r.POST(RouteDuels, h.CreateDuel)
	r.POST(RouteTournaments, h.CreateTournament)
	r.GET(RouteTournamentByID, h.GetTournament)
}

// NewRouter builds the service engine with recovery and request logging.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.diag))
	h.Register(r)
	return r
}

func requestLogger(diag *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		diag.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

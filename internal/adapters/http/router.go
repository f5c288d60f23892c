package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Tracklist/internal/adapters/signal"
	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/config"
	"github.com/dkeye/Tracklist/internal/core"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

const (
	sessionName     = "TracklistSessions"
	clientTokenKey  = "client_token"
	sessionLifetime = 3600 * 24 * 7
)

// ClientTokenMiddleware keeps a per-browser token in the signed session
// cookie and exposes it as "client_token" on the gin context.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func newSessionStore(secret string) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionLifetime,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Deps are the collaborators the router mounts.
type Deps struct {
	Orch      *orch.Orchestrator
	Directory core.RoomDirectory
	Signal    *signal.SignalWSController
	// Metrics serves /metrics; nil leaves the route unmounted.
	Metrics http.Handler
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Use(sessions.Sessions(sessionName, newSessionStore(cfg.Secret)))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("metrics", deps.Metrics != nil).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client_token", c.GetString(clientTokenKey)).Msg("ws endpoint hit")
		deps.Signal.HandleSignal(ctx, c)
	})

	h := &roomHandlers{orch: deps.Orch, dir: deps.Directory}
	api.GET("/rooms", h.list)
	api.POST("/rooms", h.create)
	api.GET("/rooms/:code", h.get)
	api.DELETE("/rooms/:code", h.evict)
	api.GET("/rooms/:code/leaderboard", h.leaderboard)
	api.GET("/rooms/:code/members", h.members)

	return r
}

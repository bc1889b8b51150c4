package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/Duet/internal/adapters/signal"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/config"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ctrl := signal.NewSignalWSController(o, cfg)
	iceServers := toICEServers(cfg.ICEServers)

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		snap, err := o.Rooms.Info(domain.RoomID(c.Param("id")))
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, domain.NewError(err))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, domain.NewError(err))
			return
		}
		c.JSON(http.StatusOK, snap.Public())
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"rooms":       o.Rooms.Count(),
			"connections": o.Hub.Count(),
		})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

// iceServerJSON is the browser RTCIceServer shape. Empty credentials are
// omitted rather than sent as null.
type iceServerJSON struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential any      `json:"credential,omitempty"`
}

func toICEServers(in []config.ICEServer) []iceServerJSON {
	out := make([]iceServerJSON, 0, len(in))
	for _, s := range in {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username, Credential: s.Credential}
		v := iceServerJSON{URLs: srv.URLs, Username: srv.Username}
		if s.Credential != "" {
			v.Credential = srv.Credential
		}
		out = append(out, v)
	}
	return out
}

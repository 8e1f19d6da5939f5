// Package api exposes the alert query/dismiss surface consumed by the host
// UI shell, the HTTP event ingest, and the websocket feed.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scamwatch/internal/alert"
	"scamwatch/internal/capture"
	"scamwatch/internal/ingest"
	"scamwatch/internal/store"
)

const maxEventBody = 1 << 20

// Config defines server dependencies.
type Config struct {
	AllowedOrigins []string
}

// Server wires HTTP handlers with the store, pipeline sink, and manager.
type Server struct {
	db       *store.Database
	sink     ingest.EventSink
	manager  *alert.Manager
	feed     *AlertFeed
	upgrader websocket.Upgrader
	cfg      Config
}

// NewServer constructs the API server.
func NewServer(db *store.Database, sink ingest.EventSink, manager *alert.Manager, feed *AlertFeed, cfg Config) *Server {
	return &Server{
		db:      db,
		sink:    sink,
		manager: manager,
		feed:    feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		cfg: cfg,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", s.handleHealth)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/events", s.handleEvent)
		apiGroup.GET("/alerts", s.handleListAlerts)
		apiGroup.GET("/alerts/active", s.handleActiveAlerts)
		apiGroup.POST("/alerts/:id/dismiss", s.handleDismissAlert)
		apiGroup.POST("/surface/:event_id/expand", s.handleExpandSurface)
		apiGroup.POST("/surface/:event_id/dismiss", s.handleDismissSurface)
		apiGroup.POST("/surface/:event_id/open", s.handleOpenApp)
	}

	router.GET("/ws/alerts", s.handleFeed)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleEvent accepts one capture event over HTTP and hands it to the
// pipeline. The response does not wait for classification.
func (s *Server) handleEvent(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}
	event, err := capture.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.sink.Push(event); err != nil {
		logrus.WithError(err).Error("event push failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event not accepted"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"event_id": event.EventID})
}

func (s *Server) handleListAlerts(c *gin.Context) {
	s.respondAlerts(c, func(limit int) ([]store.Alert, error) {
		return s.db.ListAlerts(limit)
	})
}

func (s *Server) handleActiveAlerts(c *gin.Context) {
	s.respondAlerts(c, func(limit int) ([]store.Alert, error) {
		return s.db.ActiveAlerts(limit)
	})
}

func (s *Server) respondAlerts(c *gin.Context, query func(limit int) ([]store.Alert, error)) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	alerts, err := query(limit)
	if err != nil {
		logrus.WithError(err).Error("alert query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": toAlertDTOs(alerts), "count": len(alerts)})
}

func (s *Server) handleDismissAlert(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	if err := s.db.DismissAlert(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		logrus.WithError(err).Error("alert dismiss failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dismiss failed"})
		return
	}
	if s.feed != nil {
		s.feed.AlertDismissed(uint(id))
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": id})
}

func (s *Server) handleExpandSurface(c *gin.Context) {
	s.manager.ExpandDetails(c.Param("event_id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDismissSurface(c *gin.Context) {
	s.manager.Dismiss(c.Param("event_id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOpenApp(c *gin.Context) {
	s.manager.OpenApp(c.Param("event_id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleFeed(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := s.feed.Register(conn)
	go func() {
		defer s.feed.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

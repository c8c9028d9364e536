package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/hive/internal/engine"
	"github.com/agenthands/hive/internal/store"
)

// Autonomy is the part of the engine the HTTP surface drives. The router
// stays thin: gates, decisions and persistence all live behind this.
type Autonomy interface {
	TriggerBot(ctx context.Context, botID string) (engine.Outcome, error)
	FormAlliances(ctx context.Context) (int, error)
	Stats(ctx context.Context) (store.Aggregate, error)
}

type Server struct {
	autonomy Autonomy
}

func NewServer(a Autonomy) *Server {
	return &Server{autonomy: a}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.GET("/stats", s.Stats)
	r.POST("/bots/:id/trigger", s.TriggerBot)
	r.POST("/alliances/form", s.FormAlliances)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TriggerBot runs one bot through the full pipeline immediately. The posting
// interval gate is bypassed; every other gate still applies.
func (s *Server) TriggerBot(c *gin.Context) {
	outcome, err := s.autonomy.TriggerBot(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrBotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bot not found"})
			return
		}
		log.Printf("[server] trigger bot %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trigger failed"})
		return
	}

	resp := gin.H{"bot_id": outcome.BotID, "status": string(outcome.Status)}
	switch outcome.Status {
	case engine.StatusCompleted:
		resp["action"] = string(outcome.Action)
	case engine.StatusSkipped:
		resp["reason"] = string(outcome.Reason)
	case engine.StatusFailed:
		resp["error"] = outcome.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// FormAlliances runs the compatibility matching batch once.
func (s *Server) FormAlliances(c *gin.Context) {
	formed, err := s.autonomy.FormAlliances(c.Request.Context())
	if err != nil {
		log.Printf("[server] form alliances: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"formed": formed})
}

func (s *Server) Stats(c *gin.Context) {
	agg, err := s.autonomy.Stats(c.Request.Context())
	if err != nil {
		log.Printf("[server] stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_bots":           agg.TotalBots,
		"active_autonomous":    agg.ActiveAutonomous,
		"autonomous_posts_24h": agg.AutonomousPosts24h,
		"autonomy_rate":        agg.AutonomyRatePercent,
	})
}

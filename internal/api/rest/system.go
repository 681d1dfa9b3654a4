package rest

import (
	"net/http"
	"time"

	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/interfaces"
	"github.com/gin-gonic/gin"
)

type statusResponse struct {
	interfaces.SystemStatus
	LiveClients int                      `json:"live_clients"`
	Snapshots   []dispatch.ActorSnapshot `json:"snapshots,omitempty"`
}

// GET /health
func (s *Server) healthCheck(c *gin.Context) {
	status := s.lm.GetCurrentStatus()

	code, text := http.StatusOK, "ok"
	if !status.Accepting {
		code, text = http.StatusServiceUnavailable, "unavailable"
	}
	c.JSON(code, gin.H{
		"status":    text,
		"state":     status.State,
		"timestamp": time.Now().Unix(),
	})
}

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	resp := statusResponse{SystemStatus: s.lm.GetCurrentStatus()}
	if s.wsHub != nil {
		resp.LiveClients = s.wsHub.GetClientCount()
	}

	// Snapshots exist only while actor state is held in-process.
	if inspector := s.lm.Inspector(); inspector != nil {
		for _, name := range resp.Actors {
			if snap, ok := inspector.Snapshot(name); ok {
				resp.Snapshots = append(resp.Snapshots, snap)
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

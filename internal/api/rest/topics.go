package rest

import (
	"errors"
	"net/http"

	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/topics/:name
func (s *Server) readTopic(c *gin.Context) {
	name := c.Param("name")

	content, err := s.lm.Topics().ReadTopic(c.Request.Context(), name)
	if errors.Is(err, host.ErrTopicNotFound) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeTopicNotFound, "Topic not found", name))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponseFromError(types.CodeTopicFailed, "Failed to read topic", err))
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// PUT /api/v1/topics/:name
func (s *Server) writeTopic(c *gin.Context) {
	name := c.Param("name")

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponseFromError(types.CodeTopicBadRequest, "Failed to read request body", err))
		return
	}

	if err := s.lm.Topics().WriteTopic(c.Request.Context(), name, string(body)); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponseFromError(types.CodeTopicFailed, "Failed to write topic", err))
		return
	}

	c.Status(http.StatusNoContent)
}

// POST /api/v1/topics/:name/append
func (s *Server) appendTopic(c *gin.Context) {
	name := c.Param("name")

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponseFromError(types.CodeTopicBadRequest, "Failed to read request body", err))
		return
	}

	if err := s.lm.Topics().WriteAppendTopic(c.Request.Context(), name, string(body)); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponseFromError(types.CodeTopicFailed, "Failed to append to topic", err))
		return
	}

	c.Status(http.StatusNoContent)
}

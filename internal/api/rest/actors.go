package rest

import (
	"bytes"
	"net/http"

	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// POST /api/v1/actors/:actor/<function>
func (s *Server) invokeActor(function string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("actor")

		caller, ok := s.lm.Actor(name)
		if !ok {
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeUnknownActor, "Unknown actor", name))
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponseFromError(types.CodeBadRequest, "Failed to read request body", err))
			return
		}
		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("{}")
		}

		req, err := types.ParseRequest(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponseFromError(types.CodeBadRequest, "Invalid request envelope", err))
			return
		}
		req.ActorName = name

		input, err := req.ToJSON()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponseFromError(types.CodeBadRequest, "Invalid request envelope", err))
			return
		}

		ctx := dispatch.WithRequestID(c.Request.Context(), c.GetString(requestIDContext))
		output := caller.Call(ctx, function, input)

		res, err := types.ParseResult(output)
		if err != nil {
			c.JSON(http.StatusInternalServerError, types.NewErrorResponseFromError(types.CodeInvalidResult, "Actor returned an invalid result", err))
			return
		}

		if err := s.lm.Runner().Apply(ctx, name, res); err != nil {
			s.logger.Error("Failed to dispatch result",
				zap.String("actor", name),
				zap.String("function", function),
				zap.Error(err))
			c.JSON(http.StatusBadGateway, types.NewErrorResponseFromError(types.CodeDispatchFailed, "Failed to dispatch result", err))
			return
		}

		c.Data(http.StatusOK, "application/json", output)
	}
}

// GET /api/v1/actors/:actor
func (s *Server) getActor(c *gin.Context) {
	name := c.Param("actor")

	inspector := s.lm.Inspector()
	if inspector == nil {
		c.JSON(http.StatusNotImplemented, types.NewErrorResponse(types.CodeRemoteState, "Actor state is held by the broker", name))
		return
	}

	snapshot, ok := inspector.Snapshot(name)
	if !ok {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeUnknownActor, "Unknown actor", name))
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

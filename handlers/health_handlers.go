package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	Dependencies map[string]Pinger
}

func NewHealthHandlers(deps map[string]Pinger) *HealthHandlers {
	return &HealthHandlers{Dependencies: deps}
}

// HealthCheck always answers 200 while the process serves requests;
// optional dependencies only change the "dependencies" map.
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if len(h.Dependencies) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := make(map[string]string, len(h.Dependencies))
		for name, dep := range h.Dependencies {
			if err := dep.Ping(ctx); err != nil {
				deps[name] = "unavailable"
			} else {
				deps[name] = "ok"
			}
		}
		resp["dependencies"] = deps
	}

	c.JSON(http.StatusOK, resp)
}

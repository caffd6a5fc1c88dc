package health

import (
	backend "github.com/ethanbaker/essaychat/internal/health"
	"github.com/gin-gonic/gin"
)

// Monitor reports the last observed answering service status
type Monitor interface {
	Status() backend.Status
}

// RegisterRoutes registers the routes for the health module. monitor may be nil, in which case
// the backend is reported as unchecked
func RegisterRoutes(g *gin.RouterGroup, monitor Monitor, backendURL string) {
	ctrl := &controller{monitor: monitor, backendURL: backendURL}

	g.GET("/health", ctrl.getStatus)
}

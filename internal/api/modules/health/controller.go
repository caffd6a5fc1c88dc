package health

import (
	"time"

	"github.com/ethanbaker/essaychat/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	monitor    Monitor
	backendURL string
}

// getStatus always answers 200 while the API is up. Backend readiness is reported in the body
func (ctrl *controller) getStatus(c *gin.Context) {
	resp := sdk.HealthStatusResponse{
		Status:  "ok",
		Backend: sdk.BackendStatus{BaseURL: ctrl.backendURL},
	}

	if ctrl.monitor != nil {
		status := ctrl.monitor.Status()
		resp.Backend.Reachable = status.Reachable
		resp.Backend.Ready = status.Ready
		resp.Backend.Error = status.Error
		if !status.CheckedAt.IsZero() {
			resp.Backend.CheckedAt = status.CheckedAt.UTC().Format(time.RFC3339)
		}
	}

	if !resp.Backend.Ready {
		resp.Status = "degraded"
	}

	c.JSON(sdk.NewSuccessResponse("Service is running", resp).AsGinResponse())
}

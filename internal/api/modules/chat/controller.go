package chat

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/ethanbaker/essaychat/pkg/sdk"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// eventBuffer is how many events a slow SSE client may lag behind before it is disconnected
const eventBuffer = 64

type controller struct {
	session Session
}

// GetTranscript handles GET requests for the current conversation
func (ctrl *controller) GetTranscript(c *gin.Context) {
	c.JSON(sdk.NewSuccessResponse("Transcript retrieved successfully", snapshot(ctrl.session)).AsGinResponse())
}

// PostMessage handles POST requests that submit a user turn.
// A submission seen while a question is pending gets 409. The check is best effort: two
// requests racing past it are both accepted and answered independently
func (ctrl *controller) PostMessage(c *gin.Context) {
	var req sdk.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		c.JSON(sdk.NewFailResponse(http.StatusBadRequest, "Message content is empty").AsGinResponse())
		return
	}

	if ctrl.session.Pending() {
		c.JSON(sdk.NewFailResponse(http.StatusConflict, "A question is already waiting for an answer").AsGinResponse())
		return
	}

	// The answer outlives this request
	accepted, _ := ctrl.session.Dispatch(context.WithoutCancel(c.Request.Context()), req.Content)
	if !accepted {
		c.JSON(sdk.NewFailResponse(http.StatusBadRequest, "Message content is empty").AsGinResponse())
		return
	}

	resp := sdk.PostMessageResponse{
		Accepted: true,
		Pending:  ctrl.session.Pending(),
	}
	c.JSON(sdk.NewResponse(http.StatusAccepted, "Message accepted", resp).AsGinResponse())
}

// StreamEvents streams transcript events to the client as server-sent events.
// The first event is a full snapshot so clients can render without a separate request
func (ctrl *controller) StreamEvents(c *gin.Context) {
	events := make(chan transcript.Event, eventBuffer)
	overflow := make(chan struct{})
	var overflowed bool

	// Snapshot and subscription are taken together, so every turn is sent exactly once
	current, unsubscribe := ctrl.session.Transcript().Watch(func(ev transcript.Event) {
		if overflowed {
			return
		}
		select {
		case events <- ev:
		default:
			overflowed = true
			close(overflow)
		}
	})
	defer unsubscribe()

	c.SSEvent("snapshot", sdk.TranscriptResponse{Turns: current.Turns, Pending: current.Pending})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent(ev.Kind.String(), ev)
			return true
		case <-overflow:
			log.Warn().Str("component", "api").Msg("event stream client too slow, closing")
			return false
		case <-ctx.Done():
			return false
		}
	})
}

func snapshot(session Session) sdk.TranscriptResponse {
	reader := session.Transcript()
	return sdk.TranscriptResponse{
		Turns:   reader.Turns(),
		Pending: reader.Pending(),
	}
}

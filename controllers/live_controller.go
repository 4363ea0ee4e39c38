package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/realtime"
	"go.uber.org/zap"
)

type LiveController struct {
	Hub *realtime.Hub
	Log *zap.Logger
}

func NewLiveController(hub *realtime.Hub, log *zap.Logger) *LiveController {
	return &LiveController{Hub: hub, Log: log}
}

// Stream upgrades to a websocket following ?ids=a,b or every report.
func (lc *LiveController) Stream(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if err := lc.Hub.ServeWS(c.Writer, c.Request, ids); err != nil {
		if !c.Writer.Written() {
			respondError(c, lc.Log, err)
			return
		}
		lc.Log.Warn("websocket upgrade failed", zap.Error(err))
	}
}

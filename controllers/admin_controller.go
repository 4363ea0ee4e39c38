package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/models"
	"github.com/pothole-patrol/api-go/reports"
	"go.uber.org/zap"
)

type AdminController struct {
	Lifecycle *reports.Lifecycle
	Log       *zap.Logger
}

func NewAdminController(lifecycle *reports.Lifecycle, log *zap.Logger) *AdminController {
	return &AdminController{Lifecycle: lifecycle, Log: log}
}

type reportActions struct {
	Report  *models.Report  `json:"report"`
	Actions reports.Actions `json:"actions"`
}

func (ac *AdminController) Actions(c *gin.Context) {
	report, actions, err := ac.Lifecycle.Actions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: reportActions{Report: report, Actions: actions}})
}

func (ac *AdminController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status models.ReportStatus `json:"status" binding:"required,oneof=reported in-progress resolved"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: err.Error()})
		return
	}

	report, err := ac.Lifecycle.Advance(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    reportActions{Report: report, Actions: reports.ActionsFor(report.Status)},
		Message: "Status updated to " + string(report.Status),
	})
}

func (ac *AdminController) Notify(c *gin.Context) {
	report, err := ac.Lifecycle.NotifyAuthority(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: report, Message: "Authority notified"})
}

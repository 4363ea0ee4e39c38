package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/backend"
)

// ObjectController serves images held by the in-memory storage driver at the
// URLs it hands out.
type ObjectController struct {
	Objects *backend.Memory
}

func NewObjectController(objects *backend.Memory) *ObjectController {
	return &ObjectController{Objects: objects}
}

func (oc *ObjectController) Get(c *gin.Context) {
	data, contentType, ok := oc.Objects.ObjectWithType(c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Error: backend.ErrNotFound.Error()})
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}

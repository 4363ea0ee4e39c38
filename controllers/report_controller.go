package controllers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/mapview"
	"github.com/pothole-patrol/api-go/models"
	"github.com/pothole-patrol/api-go/reports"
	"github.com/pothole-patrol/api-go/types"
	"github.com/pothole-patrol/api-go/utils"
	"go.uber.org/zap"
)

type ReportController struct {
	Submitter *reports.Submitter
	Lister    *reports.Lister
	Log       *zap.Logger
}

func NewReportController(submitter *reports.Submitter, lister *reports.Lister, log *zap.Logger) *ReportController {
	return &ReportController{Submitter: submitter, Lister: lister, Log: log}
}

var (
	errBadCoordinates = errors.New("latitude and longitude must be numbers")
	errBadForm        = errors.New("request must be a multipart form")
)

// maxFormMemory is how much of the form is held in memory before parts spill
// to temporary files.
const maxFormMemory = 32 << 20

// Submit accepts a multipart form with description, severity, image and
// either latitude/longitude or the client's location_error code.
func (rc *ReportController) Submit(c *gin.Context) {
	// Room for the 10MB image plus the text fields.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, types.MAX_IMAGE_SIZE+1<<20)
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, rc.Log, reports.ErrImageTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: errBadForm.Error()})
		return
	}

	if code := c.PostForm("location_error"); code != "" {
		n, _ := strconv.Atoi(code)
		respondError(c, rc.Log, &reports.LocationError{Code: n})
		return
	}

	input := reports.SubmitInput{
		Description: c.PostForm("description"),
		Severity:    models.Severity(strings.ToLower(c.PostForm("severity"))),
	}

	lat, lng := c.PostForm("latitude"), c.PostForm("longitude")
	if lat != "" && lng != "" {
		latitude, err1 := strconv.ParseFloat(lat, 64)
		longitude, err2 := strconv.ParseFloat(lng, 64)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: errBadCoordinates.Error()})
			return
		}
		input.Location = &reports.Location{Latitude: latitude, Longitude: longitude}
	}

	if file, err := c.FormFile("image"); err == nil {
		body, err := file.Open()
		if err != nil {
			respondError(c, rc.Log, err)
			return
		}
		defer body.Close()

		contentType := file.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename)))
		}
		input.Image = &reports.Upload{
			Name:        file.Filename,
			ContentType: contentType,
			Size:        file.Size,
			Body:        body,
		}
	}

	result, err := rc.Submitter.Submit(c.Request.Context(), utils.GetSession(c), input)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    result,
		Message: result.Message,
	})
}

// List serves the admin view, filtered by ?status=.
func (rc *ReportController) List(c *gin.Context) {
	list, err := rc.Lister.Filter(c.Request.Context(), c.DefaultQuery("status", reports.FilterAll))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: list, Meta: CountMeta{Total: len(list)}})
}

// Recent serves the history grid.
func (rc *ReportController) Recent(c *gin.Context) {
	list, err := rc.Lister.Recent(c.Request.Context())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: list, Meta: CountMeta{Total: len(list)}})
}

// Map serves the markers for the live dashboard.
func (rc *ReportController) Map(c *gin.Context) {
	status, err := reports.ParseFilter(c.DefaultQuery("status", reports.FilterAll))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	list, err := rc.Lister.All(c.Request.Context())
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: mapview.Render(list, status)})
}

func (rc *ReportController) Get(c *gin.Context) {
	report, err := rc.Lister.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: report})
}

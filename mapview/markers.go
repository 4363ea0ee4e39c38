// Package mapview projects reports onto map markers. Tile rendering is left to
// the client.
package mapview

import (
	"strings"

	"github.com/pothole-patrol/api-go/models"
)

const (
	ColorReported   = "#ef4444"
	ColorInProgress = "#f59e0b"
	ColorResolved   = "#22c55e"
	ColorUnknown    = "#6b7280"

	DefaultZoom = 12
	dateLayout  = "Jan 2, 2006"
)

// DefaultCenter is Bengaluru.
var DefaultCenter = LatLng{Lat: 12.9716, Lng: 77.5946}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Popup struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Status      string `json:"status"`
	ImageURL    string `json:"image_url"`
	ReportedOn  string `json:"reported_on"`
}

type Marker struct {
	ID       string `json:"id"`
	Position LatLng `json:"position"`
	Color    string `json:"color"`
	Popup    Popup  `json:"popup"`
}

type Map struct {
	Center  LatLng   `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
}

func StatusColor(status models.ReportStatus) string {
	switch status {
	case models.StatusReported:
		return ColorReported
	case models.StatusInProgress:
		return ColorInProgress
	case models.StatusResolved:
		return ColorResolved
	}
	return ColorUnknown
}

// Render returns one marker per report whose status equals filter. An empty
// filter keeps every report.
func Render(reports []models.Report, filter models.ReportStatus) Map {
	m := Map{Center: DefaultCenter, Zoom: DefaultZoom, Markers: []Marker{}}
	for _, r := range reports {
		if filter != "" && r.Status != filter {
			continue
		}
		m.Markers = append(m.Markers, NewMarker(r))
	}
	return m
}

func NewMarker(r models.Report) Marker {
	return Marker{
		ID:       r.ID,
		Position: LatLng{Lat: r.Latitude, Lng: r.Longitude},
		Color:    StatusColor(r.Status),
		Popup: Popup{
			Title:       strings.ToUpper(string(r.Severity)) + " Severity",
			Description: r.Description,
			Severity:    string(r.Severity),
			Status:      string(r.Status),
			ImageURL:    r.ImageURL,
			ReportedOn:  r.CreatedAt.Format(dateLayout),
		},
	}
}

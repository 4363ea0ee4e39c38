package reports

// Geolocation failure codes reported by the client.
const (
	LocationPermissionDenied    = 1
	LocationPositionUnavailable = 2
	LocationTimeout             = 3
)

// LocationError is a geolocation failure the client hit while capturing the
// reporter's position.
type LocationError struct {
	Code int
}

func (e *LocationError) Error() string {
	switch e.Code {
	case LocationPermissionDenied:
		return "Permission to access location was denied. Please enable location services."
	case LocationPositionUnavailable:
		return "Location information is unavailable. Try again later."
	case LocationTimeout:
		return "The request to get your location timed out. Please try again."
	}
	return "An unknown error occurred while retrieving location."
}

package types

const (
	// REPORT_REWARD_POINTS is credited to a non-anonymous reporter per accepted report.
	REPORT_REWARD_POINTS = 1
)

const (
	// HISTORY_LIMIT is the number of reports shown on the history grid.
	HISTORY_LIMIT = 6
	// MAX_IMAGE_SIZE caps report photos at 10MB.
	MAX_IMAGE_SIZE = 10 * 1024 * 1024
)

// AllowedImageTypes lists the content types accepted for report photos.
var AllowedImageTypes = []string{
	"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic",
}

func IsAllowedImageType(contentType string) bool {
	for _, t := range AllowedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

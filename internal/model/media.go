package model

import "errors"

const (
	MaxAvatarSizeBytes    = 5 * 1024 * 1024  // 5MB limit for avatars
	MaxPostImageSizeBytes = 10 * 1024 * 1024 // 10MB limit for post images
	AvatarWidth           = 200
	AvatarHeight          = 200
	PostImageMaxWidth     = 1080
	AvatarFolder          = "avatars"
	PostImageFolder       = "posts"
	ImageExt              = ".jpg"
	AssetCacheControl     = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")

	// ErrStorage wraps asset write failures. Surfaces as a server error;
	// the request aborts before any content record is written.
	ErrStorage = errors.New("asset storage failure")
)

// UploadResult represents the stored object location.
// Key is the collision-safe storage key; OriginalName is kept as metadata only.
type UploadResult struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

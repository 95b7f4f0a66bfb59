package model

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000"

	PresignExpirySeconds = 900
	MaxPresignBatchItems = 20
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

var imageExtensions = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeWebP: ".webp",
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// ImageExtension returns the object key extension for a supported content type
func ImageExtension(contentType string) string {
	return imageExtensions[contentType]
}

// UploadResult represents the uploaded object location
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignPostUploadRequest asks for a presigned URL for one recipe image
// (main image or a step image). The client PUTs the bytes to UploadURL and then
// references PublicURL in the recipe body.
type PresignPostUploadRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

type PresignPostUploadResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

type PresignPostUploadBatchRequest struct {
	Items []PresignPostUploadRequest `json:"items"`
}

type PresignPostUploadBatchResponse struct {
	Items []PresignPostUploadResponse `json:"items"`
}

// Media errors
var (
	ErrFileTooLarge       = newError(KindValidation, "file too large")
	ErrInvalidImageType   = newError(KindValidation, "invalid image type")
	ErrEmptyPresignBatch  = newError(KindValidation, "at least one item is required")
	ErrPresignBatchTooBig = newError(KindValidation, "too many items in batch")
)

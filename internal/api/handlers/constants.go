package handlers

import "time"

const (
	// imageFormField is the multipart field carrying the uploaded image.
	imageFormField = "file"

	// maxUploadBytes bounds the uploaded image size.
	maxUploadBytes = 20 << 20

	imageKindThumbnail = "thumbnail"
	imageKindCover     = "cover"

	// downloadCleanupDelay gives the client time to finish streaming the
	// merged file before it is removed.
	downloadCleanupDelay = 10 * time.Second
)

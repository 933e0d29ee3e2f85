package session

import (
	"time"

	"github.com/google/uuid"
)

// ImageArtifact is an uploaded image payload. The bytes are opaque: nothing
// checks that they decode as an image.
type ImageArtifact struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
	ReadAt   time.Time
}

// Empty is the sentinel returned when no artifact was ever set.
var Empty = ImageArtifact{}

func NewArtifact(name, mimeType string, data []byte) ImageArtifact {
	return ImageArtifact{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Data:     data,
		ReadAt:   time.Now().UTC(),
	}
}

func (a ImageArtifact) IsEmpty() bool {
	return len(a.Data) == 0
}

func (a ImageArtifact) Size() int {
	return len(a.Data)
}

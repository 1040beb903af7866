package mount

import (
	"io"
	"mime"
	"time"
)

// ContentStream is the content of a file together with its metadata.
// The caller must close it.
type ContentStream struct {
	io.ReadCloser

	FileName   string
	MediaType  string
	Length     int64 // -1 if unknown, e.g. for generated archives
	ModifiedAt time.Time
}

// NewContentStream wraps r, adding a no-op Close if required.
func NewContentStream(r io.Reader, name, mediaType string, length int64, modifiedAt time.Time) *ContentStream {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}

	return &ContentStream{
		ReadCloser: rc,
		FileName:   name,
		MediaType:  mediaType,
		Length:     length,
		ModifiedAt: modifiedAt,
	}
}

// ContentDisposition returns the attachment header value for the stream.
func (cs *ContentStream) ContentDisposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": cs.FileName})
}

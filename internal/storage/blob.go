package storage

import (
	"io"
	"path"
	"strings"
)

// BlobStore holds uploaded answer files and question images.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// Key prefixes for the two upload kinds.
const (
	AnswerPrefix        = "answers"
	QuestionImagePrefix = "question_images"
)

var allowedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// AllowedUploadName reports whether a filename passes the upload
// allow-list. Suffix check only, case-insensitive; no content sniffing.
func AllowedUploadName(name string) bool {
	return allowedExts[strings.ToLower(path.Ext(name))]
}

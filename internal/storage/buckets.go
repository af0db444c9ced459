package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"kasap-service/internal/models"
)

var (
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrEmptyFile       = errors.New("empty file")
)

const mb = 1024 * 1024

type Bucket struct {
	Name         string
	MaxSize      int64
	AllowedTypes []string
}

var (
	MediaFiles = Bucket{
		Name:    "media-files",
		MaxSize: 50 * mb,
		AllowedTypes: []string{
			"image/jpeg", "image/png", "image/gif",
			"video/mp4", "video/quicktime", "video/x-msvideo",
		},
	}
	Avatars = Bucket{
		Name:         "avatars",
		MaxSize:      5 * mb,
		AllowedTypes: []string{"image/jpeg", "image/png"},
	}
	CharityLogos = Bucket{
		Name:         "charity-logos",
		MaxSize:      5 * mb,
		AllowedTypes: []string{"image/jpeg", "image/png"},
	}
)

var buckets = map[string]Bucket{
	MediaFiles.Name:   MediaFiles,
	Avatars.Name:      Avatars,
	CharityLogos.Name: CharityLogos,
}

func Lookup(name string) (Bucket, error) {
	b, ok := buckets[name]
	if !ok {
		return Bucket{}, fmt.Errorf("%w: %q", ErrUnknownBucket, name)
	}
	return b, nil
}

// mimeAliases maps short video names some clients send to their registered type.
var mimeAliases = map[string]string{
	"video/mov": "video/quicktime",
	"video/avi": "video/x-msvideo",
}

func NormalizeMime(mime string) string {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if alias, ok := mimeAliases[m]; ok {
		return alias
	}
	return m
}

func (b Bucket) Validate(mime string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > b.MaxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d MB for %s", ErrFileTooLarge, size, b.MaxSize/mb, b.Name)
	}
	if !slices.Contains(b.AllowedTypes, NormalizeMime(mime)) {
		return fmt.Errorf("%w: %s not allowed in %s", ErrInvalidFileType, mime, b.Name)
	}
	return nil
}

func MediaTypeOf(mime string) models.MediaType {
	if strings.HasPrefix(NormalizeMime(mime), "video/") {
		return models.MediaVideo
	}
	return models.MediaImage
}

// Package images implements the profile image lifecycle pipeline: upload of
// originals, event-driven resizing into derivatives, and latest-image
// resolution for read paths.
//
// Every object key carries one of two reserved prefixes followed by
// "{owner}/{filename}":
//
//	original-images/{owner}/{filename}
//	resized-images/{owner}/{filename}
package images

import (
	"fmt"
	"path"
	"strings"
)

// Reserved key prefixes partitioning object roles within one flat bucket.
const (
	OriginalPrefix = "original-images/"
	ResizedPrefix  = "resized-images/"
)

// ContentType classifies an image object by its filename extension.
type ContentType string

const (
	ContentTypeJPEG    ContentType = "image/jpeg"
	ContentTypePNG     ContentType = "image/png"
	ContentTypeUnknown ContentType = "application/octet-stream"
)

// OriginalKey builds the storage key for an uploaded original.
func OriginalKey(owner, filename string) string {
	return OriginalPrefix + owner + "/" + filename
}

// ResizedKey builds the storage key for a resized derivative.
func ResizedKey(owner, filename string) string {
	return ResizedPrefix + owner + "/" + filename
}

// DerivedKey maps an original's key onto its derivative's key by swapping
// the reserved prefix. The "{owner}/{filename}" suffix is preserved
// bit-for-bit.
func DerivedKey(sourceKey string) (string, error) {
	if !strings.HasPrefix(sourceKey, OriginalPrefix) {
		return "", fmt.Errorf("key %q is not under %s", sourceKey, OriginalPrefix)
	}
	return ResizedPrefix + strings.TrimPrefix(sourceKey, OriginalPrefix), nil
}

// Owner extracts the owner segment from a reserved-prefix key. It returns an
// error when the key does not follow the "{prefix}{owner}/{filename}" shape.
func Owner(key string) (string, error) {
	var rest string
	switch {
	case strings.HasPrefix(key, OriginalPrefix):
		rest = strings.TrimPrefix(key, OriginalPrefix)
	case strings.HasPrefix(key, ResizedPrefix):
		rest = strings.TrimPrefix(key, ResizedPrefix)
	default:
		return "", fmt.Errorf("key %q has no reserved prefix", key)
	}
	owner, filename, ok := strings.Cut(rest, "/")
	if !ok || owner == "" || filename == "" {
		return "", fmt.Errorf("key %q is not of the form {prefix}{owner}/{filename}", key)
	}
	return owner, nil
}

// ContentTypeForKey classifies a key by filename extension.
func ContentTypeForKey(key string) ContentType {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return ContentTypeJPEG
	case ".png":
		return ContentTypePNG
	default:
		return ContentTypeUnknown
	}
}

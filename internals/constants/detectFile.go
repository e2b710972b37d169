package constants

import (
	"path/filepath"
	"strings"
)

const (
	FileTypeImage   = "image"
	FileTypeUnknown = "unknown"
)

// DetectFileTypeFromExt classifies an upload by extension.
func DetectFileTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileTypeImage
	default:
		return FileTypeUnknown
	}
}

// Media folders on the object store.
const (
	MediaDirCourseCovers = "courses/covers"
	MediaDirAvatars      = "authors/avatars"
	MediaDirAuthorCovers = "authors/covers"
	MediaDirPosts        = "posts"
	MediaDirGeneric      = "uploads"
)

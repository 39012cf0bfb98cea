package media

import (
	"net/url"
	"path"
	"strings"

	"github.com/angelmondragon/mediagallery-backend/pkg/enums"
)

// LinkFileType is reported for links whose extension is not recognised.
const LinkFileType = "link/url"

var urlFileTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
}

// ClassifyByExtension maps an extension onto a media type. Images win over
// videos when an extension appears in both lists.
func (p Policy) ClassifyByExtension(ext string) enums.MediaType {
	ext = normalizeExtension(ext)
	if ext == "" {
		return enums.MediaTypeOther
	}
	if _, ok := p.images[ext]; ok {
		return enums.MediaTypeImage
	}
	if _, ok := p.videos[ext]; ok {
		return enums.MediaTypeVideo
	}
	return enums.MediaTypeOther
}

// InferFileTypeFromURL returns the MIME type implied by the URL path
// extension, or LinkFileType when none applies.
func InferFileTypeFromURL(raw string) string {
	if mimeType, ok := urlFileTypes[urlExtension(raw)]; ok {
		return mimeType
	}
	return LinkFileType
}

// urlExtension extracts the lower-cased extension of the URL path, ignoring
// query and fragment.
func urlExtension(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	return extensionOf(p)
}

func extensionOf(name string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(name)))
}

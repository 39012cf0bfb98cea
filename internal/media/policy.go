package media

import (
	"sort"
	"strings"
)

// DefaultMaxUploadBytes is the upload ceiling (100 MiB).
const DefaultMaxUploadBytes int64 = 100 * 1024 * 1024

var (
	defaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	defaultVideoExtensions = []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm"}
)

// Policy holds the upload allow-lists and size ceiling. It is built once at
// startup and never mutated afterwards.
type Policy struct {
	images   map[string]struct{}
	videos   map[string]struct{}
	maxBytes int64
}

// DefaultPolicy returns the built-in allow-lists with a 100 MiB ceiling.
func DefaultPolicy() Policy {
	return NewPolicy(nil, nil, 0)
}

// NewPolicy builds a policy. Empty lists fall back to the defaults and a
// non-positive maxBytes falls back to DefaultMaxUploadBytes.
func NewPolicy(imageExts, videoExts []string, maxBytes int64) Policy {
	if len(normalizeExtensions(imageExts)) == 0 {
		imageExts = defaultImageExtensions
	}
	if len(normalizeExtensions(videoExts)) == 0 {
		videoExts = defaultVideoExtensions
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return Policy{
		images:   toSet(imageExts),
		videos:   toSet(videoExts),
		maxBytes: maxBytes,
	}
}

func (p Policy) MaxUploadBytes() int64 {
	if p.maxBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return p.maxBytes
}

// IsAllowedUpload reports whether ext belongs to the image or video allow-list.
func (p Policy) IsAllowedUpload(ext string) bool {
	ext = normalizeExtension(ext)
	if ext == "" {
		return false
	}
	_, image := p.images[ext]
	_, video := p.videos[ext]
	return image || video
}

// AllowedExtensions lists every accepted upload extension, sorted.
func (p Policy) AllowedExtensions() []string {
	out := make([]string, 0, len(p.images)+len(p.videos))
	for ext := range p.images {
		out = append(out, ext)
	}
	for ext := range p.videos {
		if _, dup := p.images[ext]; !dup {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range normalizeExtensions(exts) {
		set[ext] = struct{}{}
	}
	return set
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if n := normalizeExtension(ext); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// normalizeExtension lower-cases ext and ensures a leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

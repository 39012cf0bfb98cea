package enums

import (
	"fmt"
	"strings"
)

// MediaType is the coarse classification of an asset derived from its extension.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeOther MediaType = "other"
)

var validMediaTypes = []MediaType{
	MediaTypeImage,
	MediaTypeVideo,
	MediaTypeOther,
}

// String returns the literal string for the media type.
func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the media type is known.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validMediaTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}

// Package imageurl resolves backend profile-image references to
// displayable URLs. The backend stores images under its own webapp mount
// and returns relative paths; older records and external avatars come
// through as absolute URLs.
package imageurl

import (
	"net/url"
	"strings"
)

const fallbackBase = "https://ui-avatars.com/api/"

// Resolver joins relative image paths onto the configured backend base.
type Resolver struct {
	BaseURL   string // e.g. http://localhost:8080
	MountPath string // e.g. /ChatApp-Backend
}

// ProfileImageURL resolves an image reference. Empty input yields "",
// absolute http(s) URLs pass through unchanged, and anything else is
// treated as a path relative to the backend mount.
func (r Resolver) ProfileImageURL(imagePath string) string {
	p := strings.TrimSpace(imagePath)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return r.BaseURL + r.MountPath + p
}

// FallbackAvatarURL generates a placeholder avatar keyed by display name.
func FallbackAvatarURL(firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		name = "User Name"
	}
	q := url.Values{}
	q.Set("name", strings.ReplaceAll(name, " ", "+"))
	q.Set("background", "random")
	q.Set("size", "200")
	q.Set("color", "ffffff")
	return fallbackBase + "?" + q.Encode()
}

// Best returns the resolved image URL when a reference exists, else the
// generated fallback avatar.
func (r Resolver) Best(imagePath *string, firstName, lastName string) string {
	if imagePath != nil {
		if u := r.ProfileImageURL(*imagePath); u != "" {
			return u
		}
	}
	return FallbackAvatarURL(firstName, lastName)
}

package validators

import (
	"net/url"
	"strings"
)

// IsLinkURL accepts absolute http(s) URLs with a host. Payment apps also
// hand out custom schemes (venmo://, cashapp://), which are accepted when
// they carry something after the scheme.
func IsLinkURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "javascript", "data", "file":
		return false
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}

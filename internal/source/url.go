package source

import (
	"net/url"
	"strings"
)

const (
	Domain    = "soundcloud.com"
	WWWDomain = "www." + Domain
)

// IsSupportedURL reports whether the raw string is an absolute URL whose
// host is exactly the SoundCloud web host (or its www. variant). Hosts are
// compared case-insensitively. Any parse failure is treated as unsupported.
func IsSupportedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	// Opaque URLs ("soundcloud.com:443/foo" parses as scheme "soundcloud.com")
	// and path-only strings have no host to inspect.
	if u.Scheme == "" || u.Opaque != "" || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	return host == Domain || host == WWWDomain
}

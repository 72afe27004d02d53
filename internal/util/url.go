package util

import (
	"net/url"
	"strings"
)

// trackingParams are stripped from resolved ad links.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// ResolveURL resolves href against origin. An empty href resolves to "".
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(origin)
	if err != nil {
		return href
	}
	resolved := base.ResolveReference(ref)

	q := resolved.Query()
	changed := false
	for _, param := range trackingParams {
		if q.Has(param) {
			q.Del(param)
			changed = true
		}
	}
	if changed {
		resolved.RawQuery = q.Encode()
	}
	return resolved.String()
}

// IsHTTPURL reports whether raw is an absolute http or https URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

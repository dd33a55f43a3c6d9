package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerToken pulls the token out of an Authorization header value,
// tolerating a lowercase "bearer" prefix.
func ExtractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	const prefix = "bearer "
	if strings.HasPrefix(strings.ToLower(header), prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// ExtractToken finds a token in the Authorization header first, then in the
// "token" query parameter. The query fallback exists for WebSocket handshakes,
// where browsers cannot set headers.
func ExtractToken(r *http.Request) string {
	if token := ExtractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

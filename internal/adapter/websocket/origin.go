package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
)

// originPolicy decides which browser origins may open a game connection.
type originPolicy struct {
	appOrigin      string
	allowLocalhost bool
}

func (p originPolicy) allows(origin string) bool {
	switch {
	case origin == "":
		// Non-browser clients such as the puller CLI send no Origin header.
		return true
	case origin == p.appOrigin:
		return true
	case p.allowLocalhost:
		return isLocalhostOrigin(origin)
	default:
		return false
	}
}

// NewCheckOrigin returns the upgrader's CheckOrigin. With an empty appURL every
// origin is accepted; otherwise only the app's own origin and, in development,
// localhost.
func NewCheckOrigin(appURL string, isDevelopment bool) func(r *http.Request) bool {
	if appURL == "" {
		return func(*http.Request) bool { return true }
	}

	policy := originPolicy{appOrigin: extractOrigin(appURL), allowLocalhost: isDevelopment}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if policy.allows(origin) {
			return true
		}
		slog.Warn("Game connection from foreign origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
		return false
	}
}

func extractOrigin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

package client

import (
	"fmt"
	"net/url"
)

// ChatPath is the fixed socket path on the chat server.
const ChatPath = "/ws/chat/"

// EndpointURL derives the socket URL from the server origin: http maps to
// ws and https maps to wss. Any path on origin is replaced by ChatPath.
func EndpointURL(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("origin %q: unsupported scheme %q", origin, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("origin %q: missing host", origin)
	}
	u.Path = ChatPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}

package audit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// RequestMetadata is the network and request context recorded alongside
// security entries.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
	Endpoint  string

	// Summary is a readable browser/OS rendering of the User-Agent header.
	Summary string
}

// MetadataFromRequest extracts security metadata from an HTTP request.
// X-Forwarded-For wins over the socket address when present, since the
// service typically sits behind a proxy.
func MetadataFromRequest(r *http.Request) RequestMetadata {
	meta := RequestMetadata{
		UserAgent: r.UserAgent(),
		Endpoint:  r.URL.Path,
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		meta.IPAddress = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		meta.IPAddress = host
	} else {
		meta.IPAddress = r.RemoteAddr
	}

	if meta.UserAgent != "" {
		ua := useragent.New(meta.UserAgent)
		browser, version := ua.Browser()
		meta.Summary = fmt.Sprintf("%s %s on %s", browser, version, ua.OS())
	}

	return meta
}

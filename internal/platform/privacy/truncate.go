// Package privacy truncates caller network addresses before they are stored.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// TruncateIP zeroes the host-identifying portion of an address before it is
// used as a lockout key or written to the audit log. The stored fragment can
// never reconstruct a single caller; up to 256 IPv4 hosts share one fragment.
//
// IPv4 keeps the /24 prefix ("192.168.1.47" -> "192.168.1.0"); IPv6 keeps the
// /48 prefix. A deliberate precision tradeoff: neighbouring callers share a
// lockout window.
//
// Returns "unknown" for empty input and "invalid" for unparseable addresses.
func TruncateIP(remoteAddr string) string {
	if remoteAddr == "" {
		return "unknown"
	}
	// Accept both bare IPs and host:port forms from http.Request.RemoteAddr.
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	parsed := net.ParseIP(host)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6: keep the first 6 bytes (/48), zero the rest.
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

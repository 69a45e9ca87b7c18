package webui

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go.uber.org/zap"

	"report_summarizer/logging"
)

// ClientIPExtractor works out which client sent a request. Forwarding
// headers are only believed when the connection comes from a trusted proxy.
type ClientIPExtractor struct {
	trusted []netip.Prefix
	logger  *logging.Logger
}

// NewClientIPExtractor trusts X-Forwarded-For and X-Real-IP from peers in
// trusted. With no prefixes the connection address is always used.
func NewClientIPExtractor(trusted []netip.Prefix, logger *logging.Logger) *ClientIPExtractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClientIPExtractor{trusted: trusted, logger: logger.Named("client-ip")}
}

// IsTrusted reports whether remoteAddr is one of the trusted proxies.
func (e *ClientIPExtractor) IsTrusted(remoteAddr string) bool {
	if e == nil || len(e.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(stripPort(remoteAddr))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range e.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address of r without a port.
func (e *ClientIPExtractor) ClientIP(r *http.Request) string {
	peer := stripPort(r.RemoteAddr)
	xff := r.Header.Get("X-Forwarded-For")
	xri := r.Header.Get("X-Real-IP")
	if xff == "" && xri == "" {
		return peer
	}

	if !e.IsTrusted(r.RemoteAddr) {
		if e != nil {
			e.logger.Debug("ignoring forwarding headers from untrusted peer",
				zap.String("remote_addr", peer),
				zap.String("x_forwarded_for", xff),
				zap.String("x_real_ip", xri),
			)
		}
		return peer
	}

	if ip := parseFirstIP(xff); ip != "" {
		return ip
	}
	if ip, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
		return ip.Unmap().String()
	}
	return peer
}

// parseFirstIP returns the first valid address in an X-Forwarded-For list.
func parseFirstIP(xff string) string {
	if xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	ip, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return ""
	}
	return ip.Unmap().String()
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

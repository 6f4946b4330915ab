package target

import (
	"context"
	"fmt"
	"net"
	"net/http"
)

// DialContext re-resolves the destination host at connect time and dials
// only vetted addresses, so a rebinding DNS answer between AssertSafe and
// connect cannot reach a private network.
func (g *Guard) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid dial address %s: %w", addr, err)
	}

	addrs, err := g.SafeAddrs(ctx, host)
	if err != nil {
		return nil, err
	}

	var dialer net.Dialer
	var lastErr error
	for _, ip := range addrs {
		conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
		if dialErr == nil {
			return conn, nil
		}
		lastErr = dialErr
	}
	return nil, lastErr
}

// NewSafeTransport returns a transport that dials through g, ignores proxy
// environment variables and does not request compressed bodies, so response
// headers reach the caller unmodified.
func NewSafeTransport(g *Guard) *http.Transport {
	transport := (&http.Transport{}).Clone()
	if base, ok := http.DefaultTransport.(*http.Transport); ok && base != nil {
		transport = base.Clone()
	}
	transport.Proxy = nil
	transport.DisableCompression = true
	transport.DialContext = g.DialContext
	return transport
}

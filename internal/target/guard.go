package target

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"mdcheck/internal/config"
	"mdcheck/internal/domain"
)

const DefaultLookupTimeout = 5 * time.Second

// Resolver is the subset of *net.Resolver used by Guard.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard rejects targets that are local, blocklisted, or resolve to any
// private address.
type Guard struct {
	resolver      Resolver
	blocklist     *config.HostBlocklist
	lookupTimeout time.Duration
	lookups       singleflight.Group
}

func NewGuard(resolver Resolver, blocklist *config.HostBlocklist, lookupTimeout time.Duration) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Guard{
		resolver:      resolver,
		blocklist:     blocklist,
		lookupTimeout: lookupTimeout,
	}
}

// AssertSafe fails unless every address t's host resolves to is public.
func (g *Guard) AssertSafe(ctx context.Context, t *Target) error {
	if t == nil {
		return domain.NewCheckError(domain.KindInvalidURL, errors.New("nil target"))
	}
	_, err := g.SafeAddrs(ctx, t.Host)
	return err
}

// SafeAddrs resolves host and returns its addresses when all of them are
// public. A single private address rejects the whole set.
func (g *Guard) SafeAddrs(ctx context.Context, host string) ([]netip.Addr, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")

	if isLocalHostname(host) {
		return nil, domain.NewCheckError(domain.KindLocalTargetBlocked, fmt.Errorf("host %q", host))
	}
	if g.blocklist.IsBlocked(host) {
		return nil, domain.NewCheckError(domain.KindBlockedHost, fmt.Errorf("host %q", host))
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if IsPrivateAddr(addr) {
			return nil, domain.NewCheckError(domain.KindPrivateNetworkBlocked, fmt.Errorf("address %s", addr))
		}
		return []netip.Addr{addr}, nil
	}

	ipAddrs, err := g.lookup(ctx, host)
	if err != nil {
		return nil, domain.NewCheckError(domain.KindDNSResolutionFailed, err)
	}
	if len(ipAddrs) == 0 {
		return nil, domain.NewCheckError(domain.KindDNSResolutionFailed, fmt.Errorf("no addresses for %q", host))
	}

	addrs := make([]netip.Addr, 0, len(ipAddrs))
	for _, ipAddr := range ipAddrs {
		addr, ok := netip.AddrFromSlice(ipAddr.IP)
		if !ok || IsPrivateAddr(addr) {
			return nil, domain.NewCheckError(domain.KindPrivateNetworkBlocked, fmt.Errorf("%q resolves to %s", host, ipAddr.IP))
		}
		addrs = append(addrs, addr.Unmap())
	}
	return addrs, nil
}

// lookup collapses concurrent lookups of the same host. The shared lookup is
// bounded by lookupTimeout rather than any single caller's context.
func (g *Guard) lookup(ctx context.Context, host string) ([]net.IPAddr, error) {
	ch := g.lookups.DoChan(host, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.Background(), g.lookupTimeout)
		defer cancel()
		return g.resolver.LookupIPAddr(lookupCtx, host)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		addrs, _ := res.Val.([]net.IPAddr)
		return addrs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isLocalHostname(host string) bool {
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local")
}

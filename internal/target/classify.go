package target

import "net/netip"

var privateIPv4Prefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"), // link-local / cloud metadata
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
}

var privateIPv6Prefixes = []netip.Prefix{
	netip.MustParsePrefix("fc00::/7"),  // unique local, includes fd00::/8
	netip.MustParsePrefix("fe80::/10"), // link-local fe80 through febf
}

// isPrivateIP reports whether the textual address must not be contacted.
// Anything that does not parse as an IP address is treated as private.
func isPrivateIP(raw string) bool {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return true
	}
	return IsPrivateAddr(addr)
}

// IsPrivateAddr classifies addr as private, loopback, link-local, multicast or
// otherwise reserved. IPv4-mapped IPv6 addresses are classified as IPv4.
func IsPrivateAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.WithZone("")
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	if addr.Is4() {
		// Multicast, reserved and class E.
		if addr.As4()[0] >= 224 {
			return true
		}
		for _, prefix := range privateIPv4Prefixes {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}

	if addr.IsLoopback() || addr.IsUnspecified() {
		return true
	}
	for _, prefix := range privateIPv6Prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

package config

import (
	"net/netip"
	"strings"
)

// ValidateTarget checks addr as an IPv6 target. Every address must be
// non-empty, contain the ':' delimiter and not look like a command-line
// flag; strict additionally requires a parseable, non IPv4-mapped IPv6
// literal (zones allowed).
func ValidateTarget(addr string, strict bool) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return &Error{Field: "target.address", Message: "must be set"}
	}
	if !strings.Contains(addr, ":") || len(addr) < 4 {
		return &Error{Field: "target.address", Message: "invalid IPv6 address " + quote(addr)}
	}
	if strings.HasPrefix(addr, "-") {
		return &Error{Field: "target.address", Message: quote(addr) + " must not start with '-'"}
	}
	if !strict {
		return nil
	}

	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return &Error{Field: "target.address", Message: err.Error()}
	}
	if !ip.Is6() || ip.Is4In6() {
		return &Error{Field: "target.address", Message: quote(addr) + " is not an IPv6 address"}
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}

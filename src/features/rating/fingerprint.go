package rating

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Network fingerprinting for the anti-abuse gate. Only salted one-way hashes
// of the address and its coarse subnet ever leave this file; the raw address
// is never persisted.

// ParseClientIP returns the first hop of a forwarded-address header, or the
// fallback address when the header is empty.
func ParseClientIP(forwardedFor, fallback string) string {
	if forwardedFor != "" {
		if first, _, found := strings.Cut(forwardedFor, ","); found || first != "" {
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return fallback
}

// IPVersion classifies an address as 4 or 6, or 0 when it is neither.
func IPVersion(ip string) int {
	switch {
	case strings.Contains(ip, ":"):
		return 6
	case strings.Contains(ip, "."):
		return 4
	default:
		return 0
	}
}

// SubnetOf coarsens an address to its /24 (IPv4) or /64 (IPv6) subnet.
// Returns "" for unclassifiable input.
func SubnetOf(ip string) string {
	switch IPVersion(ip) {
	case 4:
		parts := strings.Split(ip, ".")
		if len(parts) != 4 {
			return ""
		}
		return fmt.Sprintf("%s.%s.%s.0/24", parts[0], parts[1], parts[2])
	case 6:
		parts := strings.Split(ip, ":")
		for len(parts) < 4 {
			parts = append(parts, "0")
		}
		return fmt.Sprintf("%s:%s:%s:%s::/64", parts[0], parts[1], parts[2], parts[3])
	}
	return ""
}

// HashIP returns the salted hash of an exact address.
func HashIP(ip, salt string) string {
	return hashWithSalt(ip, salt)
}

// HashSubnet returns the salted hash of a subnet fingerprint.
func HashSubnet(subnet, salt string) string {
	return hashWithSalt(subnet, salt)
}

func hashWithSalt(value, salt string) string {
	sum := sha256.Sum256([]byte(value + "|" + salt))
	return hex.EncodeToString(sum[:])
}

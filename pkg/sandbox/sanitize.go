package sandbox

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// MaskedIPv4 replaces public IPv4 literals in curl output.
const MaskedIPv4 = "*.*.*.*"

var (
	curlWord    = regexp.MustCompile(`(?i)\bcurl\b`)
	ipv4Literal = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`)

	privateIPv4 = []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("192.168.0.0/16"),
		netip.MustParsePrefix("127.0.0.0/8"),
		netip.MustParsePrefix("169.254.0.0/16"),
	}
)

// InvokesCurl reports whether command contains the word curl.
func InvokesCurl(command string) bool {
	return curlWord.MatchString(command)
}

// MaskCurlOutput hides public IPv4 addresses in the output of commands that
// invoke curl. Private, loopback and link-local addresses are kept, and
// output of any other command is returned unchanged.
func MaskCurlOutput(command, output string) string {
	if output == "" || !InvokesCurl(command) {
		return output
	}
	return ipv4Literal.ReplaceAllStringFunc(output, func(ip string) string {
		if IsPrivateIPv4(ip) {
			return ip
		}
		return MaskedIPv4
	})
}

// IsPrivateIPv4 reports whether a dotted-quad literal falls in 10/8,
// 172.16/12, 192.168/16, 127/8 or 169.254/16. Leading zeros are accepted.
func IsPrivateIPv4(ip string) bool {
	addr, ok := parseIPv4(ip)
	if !ok {
		return false
	}
	for _, prefix := range privateIPv4 {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseIPv4 is lenient about leading zeros, which netip.ParseAddr rejects.
func parseIPv4(ip string) (netip.Addr, bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return netip.Addr{}, false
	}
	var octets [4]byte
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return netip.Addr{}, false
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), true
}

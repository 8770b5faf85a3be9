package store

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const maxKeyLen = 96

// NormalizeURL applies simple canonicalization rules suitable for identity:
// lowercase host, default https scheme, strip default ports and any trailing
// slash. Two byte-identical normalized addresses always share a key.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		// Bare host, maybe with a path.
		s = strings.ToLower(s)
		s = strings.TrimSuffix(s, ".")
		return strings.TrimRight(s, "/")
	}
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" && u.Port() == "80" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && u.Port() == "443" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	if strings.HasSuffix(u.Path, "/") && len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Fragment = ""
	return u.String()
}

// SourceKey derives a stable, keyspace-safe identifier for a source address.
// The key keeps the host readable for debugging and appends a digest of the
// full normalized address so distinct pages on one host get distinct keys.
func SourceKey(address string) string {
	norm := NormalizeURL(address)
	host := norm
	if u, err := url.Parse(norm); err == nil && u.Host != "" {
		host = u.Host
	}
	host = sanitizeKeyPart(host)

	sum := sha256.Sum256([]byte(norm))
	digest := hex.EncodeToString(sum[:8])

	key := host + "--" + digest
	if len(key) > maxKeyLen {
		key = key[len(key)-maxKeyLen:]
	}
	return key
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

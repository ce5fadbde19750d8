// Package device derives a human-readable label and a stable fingerprint
// from the client's user-agent. The label goes on the session record for
// display; the fingerprint is compared on later requests to spot sessions
// replayed from a different client.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/mssola/useragent"
)

// versionTail matches everything after the major version number so browser
// auto-updates within a major release keep the same fingerprint.
var versionTail = regexp.MustCompile(`(\d+)(\.[\d.]+)+`)

// Service computes device fingerprints. A disabled service returns empty
// fingerprints, which downstream comparison treats as "no binding".
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders a raw user-agent as a short "Browser on OS" label.
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}

	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(name + " on " + os)
}

// ComputeFingerprint hashes the user-agent with minor and patch versions
// stripped, so only major version or platform changes alter the result.
func (s *Service) ComputeFingerprint(rawUserAgent string) string {
	if !s.enabled {
		return ""
	}

	normalized := versionTail.ReplaceAllString(rawUserAgent, "$1")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether the stored and presented fingerprints
// match and whether the difference counts as drift. Empty fingerprints mean
// binding is off and never count as drift.
func (s *Service) CompareFingerprints(stored, presented string) (matched bool, drift bool) {
	if stored == "" || presented == "" {
		return true, false
	}
	if stored == presented {
		return true, false
	}
	return false, true
}

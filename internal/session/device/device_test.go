package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeviceSuite struct {
	suite.Suite
	svc *Service
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

func (s *DeviceSuite) SetupTest() {
	s.svc = NewService(true)
}

func (s *DeviceSuite) TestParseUserAgentLabels() {
	cases := []struct {
		name      string
		userAgent string
		contains  []string
	}{
		{
			name:      "chrome on mac",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			contains:  []string{"Chrome", "on"},
		},
		{
			name:      "safari on iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			contains:  []string{"on", "iPhone"},
		},
		{
			name:      "firefox on linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			contains:  []string{"Firefox", "on"},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			label := ParseUserAgent(tc.userAgent)
			for _, part := range tc.contains {
				s.Contains(label, part)
			}
			s.Equal(label, strings.TrimSpace(label))
			s.NotContains(label, "  ")
		})
	}
}

func (s *DeviceSuite) TestParseUserAgentEmpty() {
	s.Equal("Unknown Device", ParseUserAgent(""))
	s.Equal("Unknown Device", ParseUserAgent("   "))
}

func (s *DeviceSuite) TestFingerprintDeterministic() {
	ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	first := s.svc.ComputeFingerprint(ua)
	second := s.svc.ComputeFingerprint(ua)

	s.Equal(first, second)
	s.Len(first, 64)
}

func (s *DeviceSuite) TestFingerprintIgnoresMinorVersions() {
	older := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.109 Safari/537.36"
	newer := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.224 Safari/537.36"

	s.Equal(s.svc.ComputeFingerprint(older), s.svc.ComputeFingerprint(newer))
}

func (s *DeviceSuite) TestFingerprintTracksMajorVersions() {
	v120 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	v121 := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	s.NotEqual(s.svc.ComputeFingerprint(v120), s.svc.ComputeFingerprint(v121))
}

func (s *DeviceSuite) TestDisabledServiceProducesNoFingerprint() {
	disabled := NewService(false)
	s.Empty(disabled.ComputeFingerprint("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0"))
}

func (s *DeviceSuite) TestCompareFingerprints() {
	s.Run("different values drift", func() {
		matched, drift := s.svc.CompareFingerprints("a", "b")
		s.False(matched)
		s.True(drift)
	})

	s.Run("equal values match", func() {
		matched, drift := s.svc.CompareFingerprints("abc", "abc")
		s.True(matched)
		s.False(drift)
	})

	s.Run("missing value means binding is off", func() {
		matched, drift := s.svc.CompareFingerprints("", "abc")
		s.True(matched)
		s.False(drift)
	})
}

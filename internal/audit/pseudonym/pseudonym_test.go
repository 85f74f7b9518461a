package pseudonym

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PseudonymizerSuite struct {
	suite.Suite
	p *Pseudonymizer
}

func TestPseudonymizerSuite(t *testing.T) {
	suite.Run(t, new(PseudonymizerSuite))
}

func (s *PseudonymizerSuite) SetupTest() {
	s.p = New("test-master-key")
}

// =============================================================================
// Pseudonymize Tests
// =============================================================================

func (s *PseudonymizerSuite) TestPseudonymize() {
	s.Run("is deterministic across calls", func() {
		first := s.p.Pseudonymize("judge1", DomainActor)
		second := s.p.Pseudonymize("judge1", DomainActor)
		s.Equal(first, second)
	})

	s.Run("produces fixed-length uppercase hex", func() {
		got := s.p.Pseudonymize("judge1", DomainActor)
		s.Len(got, 16)
		s.Equal(strings.ToUpper(got), got)
		s.Regexp(`^[0-9A-F]{16}$`, got)
	})

	s.Run("different domains yield different pseudonyms", func() {
		actor := s.p.Pseudonymize("judge1", DomainActor)
		target := s.p.Pseudonymize("judge1", DomainTarget)
		s.NotEqual(actor, target)
	})

	s.Run("different values yield different pseudonyms", func() {
		s.NotEqual(
			s.p.Pseudonymize("judge1", DomainActor),
			s.p.Pseudonymize("judge2", DomainActor),
		)
	})

	s.Run("different keys yield different pseudonyms", func() {
		other := New("other-master-key")
		s.NotEqual(
			s.p.Pseudonymize("judge1", DomainActor),
			other.Pseudonymize("judge1", DomainActor),
		)
	})

	s.Run("empty value yields empty pseudonym", func() {
		s.Empty(s.p.Pseudonymize("", DomainActor))
	})
}

// =============================================================================
// Redact Tests
// =============================================================================

func (s *PseudonymizerSuite) TestRedact() {
	s.Run("redacts case identifier and leaves unrelated text", func() {
		got := s.p.Redact("case_id=123 user=alice")
		s.Equal("case_id=[REDACTED] user=alice", got)
	})

	s.Run("redacts all known identifier keys", func() {
		got := s.p.Redact("user_id=ab-12 username=alice resolution_id=9 request_id=77")
		s.Equal("user_id=[REDACTED] username=[REDACTED] resolution_id=[REDACTED] request_id=[REDACTED]", got)
	})

	s.Run("hash and signature are marked present, not erased", func() {
		got := s.p.Redact("hash=deadbeef sig=abc123...")
		s.Equal("hash=[PRESENT] sig=[PRESENT]", got)
	})

	s.Run("plain text passes through unchanged", func() {
		s.Equal("decision=APPROVE approvals=2", s.p.Redact("decision=APPROVE approvals=2"))
	})
}

// =============================================================================
// MaskIP Tests
// =============================================================================

func (s *PseudonymizerSuite) TestMaskIP() {
	s.Run("masks last two IPv4 octets", func() {
		s.Equal("192.168.x.x", s.p.MaskIP("192.168.1.100"))
	})

	s.Run("empty input yields empty output", func() {
		s.Empty(s.p.MaskIP(""))
	})

	s.Run("non-IPv4 keeps first half with truncation marker", func() {
		got := s.p.MaskIP("2001:db8::1")
		s.Equal("2001:...", got)
	})
}

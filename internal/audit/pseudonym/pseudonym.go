// Package pseudonym implements keyed anonymization for the audit trail.
//
// Pseudonyms let an auditor correlate repeated events from the same actor or
// target without ever learning who they are. The mapping is one-way: it is an
// HMAC under a process-wide master key that never leaves this package.
package pseudonym

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Pseudonym length in hex characters: 64 bits of output. Enough to correlate,
// not enough to enumerate back to an identity.
const pseudonymHexLen = 16

// Domain prefixes keep actor and target pseudonyms uncorrelatable: the same
// user showing up in both columns yields two unrelated pseudonyms.
const (
	DomainActor  = "actor"
	DomainTarget = "target"
)

// Pseudonymizer derives pseudonyms, redacts detail strings and masks IPs.
// The zero value is unusable; construct with New.
type Pseudonymizer struct {
	key []byte
}

// New creates a Pseudonymizer keyed with the given master key.
func New(masterKey string) *Pseudonymizer {
	return &Pseudonymizer{key: []byte(masterKey)}
}

// Pseudonymize computes a truncated keyed hash of domain+":"+value.
// Identical inputs always yield identical pseudonyms; empty input yields "".
func (p *Pseudonymizer) Pseudonymize(value, domain string) string {
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(domain))
	mac.Write([]byte(":"))
	mac.Write([]byte(value))
	digest := hex.EncodeToString(mac.Sum(nil))
	return strings.ToUpper(digest[:pseudonymHexLen])
}

// Redaction markers. [PRESENT] tells the auditor a value existed without
// revealing it; [REDACTED] removes the value entirely.
const (
	markerRedacted = "[REDACTED]"
	markerPresent  = "[PRESENT]"
)

// redactions is the fixed set of sensitive key=value patterns scrubbed from
// free-text details before they become auditor-visible.
var redactions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`case_id=[\w-]+`), "case_id=" + markerRedacted},
	{regexp.MustCompile(`user_id=[\w-]+`), "user_id=" + markerRedacted},
	{regexp.MustCompile(`username=\w+`), "username=" + markerRedacted},
	{regexp.MustCompile(`resolution_id=[\w-]+`), "resolution_id=" + markerRedacted},
	{regexp.MustCompile(`request_id=[\w-]+`), "request_id=" + markerRedacted},
	{regexp.MustCompile(`hash=\w+`), "hash=" + markerPresent},
	{regexp.MustCompile(`sig=\w+(\.\.\.)?`), "sig=" + markerPresent},
}

// Redact scrubs known sensitive key=value tokens from a details string.
// Unrelated text is left untouched.
func (p *Pseudonymizer) Redact(details string) string {
	result := details
	for _, r := range redactions {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// MaskIP partially masks an IP for privacy.
// IPv4: 192.168.1.100 -> 192.168.x.x. Anything else keeps only its first half
// followed by a truncation marker; a coarse fallback, not IPv6 handling.
func (p *Pseudonymizer) MaskIP(ip string) string {
	if ip == "" {
		return ""
	}
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".x.x"
	}
	return ip[:len(ip)/2] + "..."
}

package email

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/copperline/courier/internal/domain"
)

// addressPattern is a deliberately RFC-light check: local@domain.tld.
// Providers perform their own strict validation; this catches the
// obviously malformed input before any log entry or network call.
var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// addressDelimiter joins multi-recipient lists into a single storable
// string. Reads must split on the same delimiter.
const addressDelimiter = ","

// ValidateAddresses checks every address and returns them in input
// order. The call fails atomically: if any address is malformed, no
// addresses are returned and the error names every offender.
func ValidateAddresses(addresses ...string) ([]string, error) {
	var invalid []string
	valid := make([]string, 0, len(addresses))

	for _, addr := range addresses {
		trimmed := strings.TrimSpace(addr)
		if !addressPattern.MatchString(trimmed) {
			invalid = append(invalid, addr)
			continue
		}
		valid = append(valid, trimmed)
	}

	if len(invalid) > 0 {
		return nil, domain.Errorf(domain.EINVALID, "email.validate",
			"invalid email address(es): %s", strings.Join(invalid, ", "))
	}

	return valid, nil
}

// DetermineContentType classifies the supplied bodies.
// Both present yields mixed; exactly one yields html or text; neither
// is a validation error.
func DetermineContentType(html, text string) (domain.ContentType, error) {
	hasHTML := strings.TrimSpace(html) != ""
	hasText := strings.TrimSpace(text) != ""

	switch {
	case hasHTML && hasText:
		return domain.ContentTypeMixed, nil
	case hasHTML:
		return domain.ContentTypeHTML, nil
	case hasText:
		return domain.ContentTypeText, nil
	default:
		return "", domain.Invalid("email.content", "either html or text content is required")
	}
}

// SanitizeContent strips null bytes and surrounding whitespace.
// Side-effect-free; safe to call on already-sanitized input.
func SanitizeContent(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\x00", ""))
}

// JoinAddresses collapses an address list into one storable string.
// Returns nil for an empty list so storage never holds an ambiguous
// empty string.
func JoinAddresses(addresses []string) *string {
	if len(addresses) == 0 {
		return nil
	}
	joined := strings.Join(addresses, addressDelimiter)
	return &joined
}

// SplitAddresses is the inverse of JoinAddresses.
func SplitAddresses(joined *string) []string {
	if joined == nil || *joined == "" {
		return nil
	}
	parts := strings.Split(*joined, addressDelimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// EncodeTags serializes tags for the log entry's single text column.
// Returns nil for an empty list.
func EncodeTags(tags []domain.Tag) (*string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// DecodeTags is the inverse of EncodeTags.
func DecodeTags(encoded *string) ([]domain.Tag, error) {
	if encoded == nil || *encoded == "" {
		return nil, nil
	}
	var tags []domain.Tag
	if err := json.Unmarshal([]byte(*encoded), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

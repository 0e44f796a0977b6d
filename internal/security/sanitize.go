package security

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrSuspiciousInput = errors.New("suspicious input")
	ErrInvalidAPIKey   = errors.New("invalid API key format")
	ErrInvalidURL      = errors.New("invalid URL")
)

// MinAPIKeyLength is the shortest key accepted
const MinAPIKeyLength = 20

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)onload`),
	regexp.MustCompile(`(?i)onerror`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)<iframe`),
}

var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:`),
	regexp.MustCompile(`(?i)vbscript:`),
}

// keyShapes are the credential formats chatvault knows how to use
var keyShapes = []*regexp.Regexp{
	regexp.MustCompile(`^sk-[a-zA-Z0-9-_]{20,}$`),
	regexp.MustCompile(`^sk-ant-[a-zA-Z0-9-_]{95}$`),
	regexp.MustCompile(`^[a-zA-Z0-9-_]{32,}$`),
}

// Suspicious returns the first pattern input matches, or "" if none
func Suspicious(input string) string {
	for _, p := range suspiciousPatterns {
		if p.MatchString(input) {
			return p.String()
		}
	}
	return ""
}

// Sanitize trims free-text input and rejects markup or script-like content.
// The terminal is the only renderer, so no HTML escaping is applied.
func Sanitize(input string) (string, error) {
	if p := Suspicious(input); p != "" {
		return "", ErrSuspiciousInput
	}
	return strings.TrimSpace(input), nil
}

// ValidateAPIKey checks length, suspicious content and known key shapes
func ValidateAPIKey(key string) error {
	if len(key) < MinAPIKeyLength {
		return ErrInvalidAPIKey
	}
	if Suspicious(key) != "" {
		return ErrSuspiciousInput
	}
	for _, shape := range keyShapes {
		if shape.MatchString(key) {
			return nil
		}
	}
	return ErrInvalidAPIKey
}

// ValidateURL accepts http and https endpoints only
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	for _, p := range suspiciousURLPatterns {
		if p.MatchString(raw) {
			return ErrInvalidURL
		}
	}
	return nil
}

// Mask hides a secret for exports: four characters kept at each end
func Mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", 8)
	}
	return secret[:4] + strings.Repeat("*", max(4, len(secret)-8)) + secret[len(secret)-4:]
}

// MaskDisplay hides a secret for listings: six characters kept at each end.
// Keys of twelve characters or fewer are masked entirely.
func MaskDisplay(secret string) string {
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:6] + strings.Repeat("*", len(secret)-12) + secret[len(secret)-6:]
}

package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxSourceSize  = 256 * 1024 // 256KB - user program size limit
	MaxIntroSize   = 512 * 1024 // 512KB - a single topic intro
	MaxMessageSize = 1024 * 1024
)

// String length limits
const (
	MaxIDLength          = 128
	MaxTopicKeyLength    = 64
	MaxLabelLength       = 256
	MaxDescriptionLength = 2048
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// TopicKeyPattern allows lowercase alphanumeric, hyphens and dots
	TopicKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateTopicKey validates a content registry key
func ValidateTopicKey(key string) error {
	if err := ValidateString(key, "topic key", 1, MaxTopicKeyLength, true); err != nil {
		return err
	}
	if !TopicKeyPattern.MatchString(key) {
		return fmt.Errorf("topic key %q must be lowercase alphanumeric with dots or hyphens", key)
	}
	return nil
}

// ValidateSource validates user-supplied program text
func ValidateSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("source code is required")
	}
	if len(source) > MaxSourceSize {
		return fmt.Errorf("source code exceeds %d bytes", MaxSourceSize)
	}
	if !utf8.ValidString(source) {
		return fmt.Errorf("source code must be valid UTF-8")
	}
	return nil
}

// ValidateIntro validates topic intro text
func ValidateIntro(intro string) error {
	if strings.TrimSpace(intro) == "" {
		return fmt.Errorf("intro is required")
	}
	if len(intro) > MaxIntroSize {
		return fmt.Errorf("intro exceeds %d bytes", MaxIntroSize)
	}
	return nil
}

package brawlapi

import (
	"clubbot/internal/common"
	"strings"
)

// Characters a player or club tag can be made of
const tagAlphabet = "0289PYLQGRJCUV"

const (
	minTagLength = 3
	maxTagLength = 12
)

// Validate a tag typed by a user and return it in canonical form:
// upper case and without the leading '#'
func ParseTag(input string) (string, error) {

	tag := strings.ToUpper(strings.TrimSpace(input))
	tag = strings.TrimPrefix(tag, "#")
	// Users often type O instead of 0
	tag = strings.ReplaceAll(tag, "O", "0")

	if len(tag) < minTagLength || len(tag) > maxTagLength {
		return "", &common.ValidationError{Input: input, Reason: "a tag has between 3 and 12 characters"}
	}
	for _, c := range tag {
		if !strings.ContainsRune(tagAlphabet, c) {
			return "", &common.ValidationError{Input: input, Reason: "a tag only contains the characters " + tagAlphabet}
		}
	}
	return tag, nil
}

package common

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// ExtractJSON extracts JSON content from a text string. Language models
// wrap structured output in prose or code fences often enough that the
// raw completion cannot be unmarshaled directly.
func ExtractJSON(text string) (string, error) {
	// Try to find JSON object
	objRegex := regexp.MustCompile(`(?s)\{.*\}`)
	objMatch := objRegex.FindString(text)
	if objMatch != "" {
		var obj interface{}
		if err := json.Unmarshal([]byte(objMatch), &obj); err == nil {
			return objMatch, nil
		}
	}

	// Try to find JSON array
	arrRegex := regexp.MustCompile(`(?s)\[.*\]`)
	arrMatch := arrRegex.FindString(text)
	if arrMatch != "" {
		var arr interface{}
		if err := json.Unmarshal([]byte(arrMatch), &arr); err == nil {
			return arrMatch, nil
		}
	}

	return "", fmt.Errorf("no valid JSON found in text")
}

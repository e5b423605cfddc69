package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips any markup from free-text input (descriptions, reasons)
// before it is stored.
func Sanitize(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

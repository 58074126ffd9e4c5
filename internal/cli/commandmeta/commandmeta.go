package commandmeta

import "strings"

// EmitsExecutionStatusPath reports whether the command prints an [OK] or
// [ERROR] status line on stderr.
func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "zpasync apply", "zpasync diff":
		return true
	default:
		return false
	}
}

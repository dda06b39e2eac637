package core

import "strings"

// NormalizeHandle strips exactly one leading '@'. "@@alice" becomes "@alice".
func NormalizeHandle(raw string) string {
	return strings.TrimPrefix(raw, "@")
}

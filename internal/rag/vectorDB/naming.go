package vectorDB

import (
	"fmt"
	"strings"
)

// CollectionName maps a user identity to a store-safe collection name. The
// mapping is injective: "_" is doubled so every escape sequence is unambiguous.
func CollectionName(userId string) string {
	var sb strings.Builder
	for i := 0; i < len(userId); i++ {
		c := userId[i]
		switch {
		case c == '_':
			sb.WriteString("__")
		case c == '@':
			sb.WriteString("_at_")
		case c == '.':
			sb.WriteString("_dot_")
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "_x%02X_", c)
		}
	}
	return sb.String()
}

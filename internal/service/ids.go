package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID mints an opaque prefixed identifier, e.g. "ident-3f2a9c81d04b".
func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + hex[:12]
}

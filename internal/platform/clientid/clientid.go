// Package clientid derives opaque client identifiers from network addresses.
package clientid

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Hash returns a 32 hex digit digest of id, or "" for a blank id.
func Hash(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:16])
}

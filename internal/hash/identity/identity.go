// Package identity derives the idempotency key for a grant.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Digest computes the content hash over exactly title, url, deadline and
// source URL, lower-cased. Description, amount and tags are excluded on
// purpose: a re-scrape that edits those fields must update the existing row
// rather than create a duplicate.
func Digest(title, url string, deadline *time.Time, sourceURL string) string {
	var due string
	if deadline != nil {
		due = deadline.UTC().Format(time.RFC3339)
	}
	key := strings.ToLower(strings.Join([]string{title, url, due, sourceURL}, "|"))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

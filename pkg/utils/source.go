package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	sourcePrefix    = "gmaps_"
	maxSourceKeyLen = 64
)

// DeriveSourceID builds a deterministic scrape-history natural key from a
// search query: lower-cased, commas removed, whitespace runs collapsed to
// underscores, bounded in length. Repeated runs of the same query therefore
// update the same history row instead of accumulating duplicates.
func DeriveSourceID(query string) string {
	key := strings.ToLower(strings.TrimSpace(query))
	key = strings.ReplaceAll(key, ",", "")
	key = strings.Join(strings.Fields(key), "_")
	if len(key) > maxSourceKeyLen {
		key = key[:maxSourceKeyLen]
	}
	return sourcePrefix + key
}

// SplitLocationKey pulls the location portion out of an "<what> in <where>"
// query. It returns an empty string when the query has no such suffix.
func SplitLocationKey(query string) string {
	if _, loc, ok := strings.Cut(query, " in "); ok {
		return strings.TrimSpace(loc)
	}
	return ""
}

// HashKey creates a SHA256 hash of a string, used for safe Redis keys.
func HashKey(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash returns the hex SHA-256 digest of data. Image files are keyed by
// their content, never their path, so renames and copies share entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// versionedKey joins kind, format version and parts into a fixed-length
// key of the form "kind:v<version>:<digest>".
func versionedKey(kind string, version int, parts ...string) string {
	digest := Hash([]byte(strings.Join(parts, "\x00")))
	return kind + ":v" + strconv.Itoa(version) + ":" + digest
}

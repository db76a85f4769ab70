package migrator

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
)

// ChecksumLength is the width of every checksum produced by Checksum.
const ChecksumLength = md5.Size * 2

// Checksum returns the MD5 digest of text as 32 lowercase hex characters.
//
// The result depends only on the UTF-8 bytes of text, so the same input always
// yields the same checksum and any byte change yields a different one.
//
// Example:
//
//	migrator.Checksum("CREATE TABLE users(id INT)\n")
//	// "4b0c1e5f..." (32 characters)
func Checksum(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5String hashes the content and encodes the result in hex. This is the
// dedup key for ingested images, matching what object stores report for
// uploaded blobs.
func MD5String(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

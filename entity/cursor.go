package entity

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// A cursor is an opaque resume-after token over the listing order
// (uploaded_at DESC, id DESC). Clients never see the inside of one.
type cursor struct {
	UploadedAt int64
	ID         uint64
}

func encodeCursor(c cursor) string {
	raw := strconv.FormatInt(c.UploadedAt, 10) + ":" + strconv.FormatUint(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return cursor{}, fmt.Errorf("invalid cursor %q", token)
	}
	uploadedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return cursor{}, fmt.Errorf("invalid cursor %q: %w", token, err)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return cursor{}, fmt.Errorf("invalid cursor %q: %w", token, err)
	}
	return cursor{UploadedAt: uploadedAt, ID: id}, nil
}

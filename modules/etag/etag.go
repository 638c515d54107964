package etag

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidETag = errors.New("invalid etag format")

type ETaggable interface {
	V() string
}

// For HTTP headers, remember that the actual header value is usually quoted:
//
// fmt.Sprintf("%q", ETag(obj))
func ETag(obj ETaggable) string {
	return "v:" + obj.V()
}

// Header returns the quoted entity tag for an ETag response header.
func Header(obj ETaggable) string {
	return strconv.Quote(ETag(obj))
}

func ParseETag(etag string) (string, error) {
	const prefix = "v:"
	if !strings.HasPrefix(etag, prefix) {
		return "", ErrInvalidETag
	}
	return strings.TrimPrefix(etag, prefix), nil
}

// ParseVersion reads an If-Match value such as `"v:3"` or `W/"v:3"`.
// An empty header or "*" yields 0, meaning any version matches.
func ParseVersion(header string) (int64, error) {
	h := strings.TrimSpace(header)
	if h == "" || h == "*" {
		return 0, nil
	}
	h = strings.TrimPrefix(h, "W/")
	if unq, err := strconv.Unquote(h); err == nil {
		h = unq
	}
	raw, err := ParseETag(h)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidETag
	}
	return v, nil
}

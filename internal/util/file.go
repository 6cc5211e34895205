package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ValidateMimeType sniffs the content type of reader and checks it against allowedTypes,
// which may hold prefixes ("image/") or full types.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}

	mimeType := mtype.String()
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mtype.Is(allowed) {
			return mimeType, nil
		}
	}

	return mimeType, fmt.Errorf("%w: unsupported type %s", ErrInvalidFile, mimeType)
}

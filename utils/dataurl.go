package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// AllowedImageTypes is the MIME whitelist for uploaded photos and attachments.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// IsAllowedImageType reports whether contentType is an accepted upload type.
func IsAllowedImageType(contentType string) bool {
	for _, t := range AllowedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// EncodeDataURL encodes raw bytes as a base64 data URL for storage in a
// record field instead of a file path.
func EncodeDataURL(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL decodes a stored data URL back into its MIME type and raw bytes.
func DecodeDataURL(dataURL string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, errors.New("invalid file format")
	}
	header, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return "", nil, errors.New("invalid data URL: missing payload")
	}
	mimeType = strings.TrimPrefix(header, "data:")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return mimeType, data, nil
}

// ExtensionForMIME maps an image MIME type to a download file extension.
func ExtensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	}
	return ".jpg"
}

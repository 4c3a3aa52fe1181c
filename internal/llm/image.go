package llm

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Supported image MIME types for vision requests.
var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SniffImageMIME detects the MIME type of raw image bytes. It returns ""
// when the bytes are not one of the supported image formats.
func SniffImageMIME(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if supportedImageTypes[mime] {
		return mime
	}
	return ""
}

// MIME returns the declared MIME type, sniffing the data when unset.
// Falls back to image/jpeg, which every vision backend accepts.
func (img Image) MIME() string {
	if img.MIMEType != "" {
		return img.MIMEType
	}
	if m := SniffImageMIME(img.Data); m != "" {
		return m
	}
	return "image/jpeg"
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img Image) DataURL() string {
	return "data:" + img.MIME() + ";base64," + img.Base64()
}

// checkContent turns a blank completion into ErrEmptyResponse.
func checkContent(content, model string) error {
	if strings.TrimSpace(content) == "" {
		return &ErrEmptyResponse{Model: model}
	}
	return nil
}

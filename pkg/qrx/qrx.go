// Package qrx renders provisioning URIs as QR code images for authenticator
// app enrollment.
package qrx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty.
	ErrEmptyContent = errors.New("qrx: content cannot be empty")
	// ErrGenerateFailed is returned when QR encoding fails.
	ErrGenerateFailed = errors.New("qrx: failed to generate QR code")
)

// defaultSize is the image edge in pixels used when no size is specified.
const defaultSize = 256

// Generate creates a QR code PNG with the given content.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerateFailed, err)
	}
	return png, nil
}

// DataURI creates a base64 data URI of a QR code PNG, ready to drop into an
// <img src> attribute on the client.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}

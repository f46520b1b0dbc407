package favicon

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	ico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrNotImage is returned when a payload cannot be treated as an image.
var ErrNotImage = errors.New("payload is not an image")

// EncodeDataURI wraps raw bytes in a base64 data URI of the given MIME type.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// imageMIME picks the MIME type for an icon payload. A declared image/*
// Content-Type wins; otherwise the bytes are sniffed. ICO files are not
// recognized by the stdlib sniffer so their magic is checked first.
func imageMIME(declared string, data []byte) (string, bool) {
	if mt, _, _ := strings.Cut(declared, ";"); strings.HasPrefix(strings.TrimSpace(strings.ToLower(mt)), "image/") {
		return strings.TrimSpace(strings.ToLower(mt)), true
	}
	if isICO(data) {
		return "image/x-icon", true
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, true
	}
	return "", false
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0 && data[1] == 0 && data[2] == 1 && data[3] == 0
}

// decodeIcon decodes any supported raster format, falling back to the ICO
// decoder when the registered formats reject the payload.
func decodeIcon(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, icoErr := ico.Decode(bytes.NewReader(data))
	if icoErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

// reencodePNG decodes data and re-encodes it as a PNG data URI, scaling it
// down to maxDim when set.
func reencodePNG(data []byte, maxDim int) (string, error) {
	img, err := decodeIcon(data)
	if err != nil {
		return "", err
	}
	img = scaleToFit(img, maxDim)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return EncodeDataURI("image/png", buf.Bytes()), nil
}

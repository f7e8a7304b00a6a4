// Package media handles menu image payloads.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidDataURL is returned for payloads that are not base64 data URLs.
	ErrInvalidDataURL = errors.New("invalid image data URL")
	// ErrUnsupportedType is returned for payloads that are not images.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Image is a decoded menu image.
type Image struct {
	MIMEType string
	Data     []byte
}

// Ext returns the file extension used when archiving the image.
func (img Image) Ext() string {
	switch img.MIMEType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/heic":
		return "heic"
	}
	return "bin"
}

// Format returns the subtype, e.g. "jpeg" for image/jpeg.
func (img Image) Format() string {
	return strings.TrimPrefix(img.MIMEType, "image/")
}

// DataURL renders the image as a base64 data URL.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ParseDataURL decodes "data:<mime>;base64,<payload>". A bare base64 payload
// is accepted and its type sniffed from the bytes.
func ParseDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	payload := s
	declared := ""
	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return Image{}, ErrInvalidDataURL
		}
		declared = strings.TrimSuffix(meta, ";base64")
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
	}
	return FromBytes(data, declared)
}

// supported lists the image types the vision models accept.
var supported = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
}

// FromBytes validates raw image bytes. declared is the client-supplied
// content type and may be empty. The stored type always comes from the bytes
// themselves; a declared type only narrows what is accepted.
func FromBytes(data []byte, declared string) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrInvalidDataURL
	}
	mime := sniff(data)
	if !supported[mime] {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	switch want := normalizeType(declared); {
	case want == "", want == "application/octet-stream", want == mime:
	case !supported[want]:
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedType, want)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

func normalizeType(declared string) string {
	mime := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "image/jpg" {
		return "image/jpeg"
	}
	return mime
}

// heicBrands are the ISO BMFF brands used by HEIC/HEIF stills.
var heicBrands = map[string]bool{"heic": true, "heix": true, "hevc": true, "heim": true, "heis": true, "mif1": true}

func sniff(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" && heicBrands[string(data[8:12])] {
		return "image/heic"
	}
	return normalizeType(http.DetectContentType(data))
}

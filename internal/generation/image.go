// ABOUTME: Data URL parsing and encoding for images exchanged with the generation collaborator
// ABOUTME: Payloads are data:<mime>;base64,<data> strings

package generation

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMimeType is assumed when a data URL omits its media type.
const DefaultMimeType = "image/png"

// Image is a base64 encoded image and its media type.
type Image struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ParseDataURL splits a base64 data URL into its media type and data.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("data URL has no payload separator")
	}

	mime, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return Image{}, fmt.Errorf("data URL is not base64 encoded")
	}
	if mime == "" {
		mime = DefaultMimeType
	}
	if data == "" {
		return Image{}, fmt.Errorf("data URL has an empty payload")
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return Image{}, fmt.Errorf("decoding data URL payload: %w", err)
	}

	return Image{MimeType: mime, Data: data}, nil
}

// DataURL encodes the image as a data URL.
func (i Image) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Data
}

// Size returns the decoded length of the image in bytes.
func (i Image) Size() int64 {
	n := len(i.Data) / 4 * 3
	switch {
	case strings.HasSuffix(i.Data, "=="):
		n -= 2
	case strings.HasSuffix(i.Data, "="):
		n--
	}
	return int64(n)
}

// EncodeDataURL builds a data URL from raw bytes.
func EncodeDataURL(mime string, raw []byte) string {
	if mime == "" {
		mime = DefaultMimeType
	}
	return Image{MimeType: mime, Data: base64.StdEncoding.EncodeToString(raw)}.DataURL()
}

// Package imagex classifies and decodes the image references carried by
// canonical content items. An image reference is either a data: URI with an
// inline base64 payload or a plain remote URL.
package imagex

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
)

// DefaultMIME is assumed for URLs whose extension is not in the lookup
// table. JPEG is the least surprising guess for photographic content.
const DefaultMIME = "image/jpeg"

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

var mimeByExtension = map[string]string{
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// IsDataURI reports whether url embeds its payload inline.
func IsDataURI(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// ParseDataURI splits a data: URI into its MIME type and the base64 payload
// text, without decoding. Anything that does not match the
// data:<mime>;base64,<payload> shape is an error.
func ParseDataURI(uri string) (mime, payload string, err error) {
	match := dataURIPattern.FindStringSubmatch(uri)
	if match == nil {
		return "", "", fmt.Errorf("invalid base64 image: %s", truncate(uri, 64))
	}
	return match[1], match[2], nil
}

// DecodeDataURI splits a data: URI into its MIME type and decoded bytes.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	mime, payload, err := ParseDataURI(uri)
	if err != nil {
		return "", nil, err
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return mime, data, nil
}

// MIMEFromURL guesses the MIME type of a remote image URL from its file
// extension, ignoring any query string. Unknown extensions fall back to
// DefaultMIME.
func MIMEFromURL(url string) string {
	trimmed := url
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if mime, ok := mimeByExtension[strings.ToLower(path.Ext(trimmed))]; ok {
		return mime
	}
	return DefaultMIME
}

// Fetch downloads a remote image and returns its bytes together with the
// MIME type guessed from the URL.
func Fetch(ctx context.Context, client *http.Client, url string) (mime string, data []byte, err error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("failed to fetch image %s: status %d", url, resp.StatusCode)
	}
	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read image %s: %w", url, err)
	}
	return MIMEFromURL(url), data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

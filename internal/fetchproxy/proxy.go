// Package fetchproxy performs validated cross-origin image fetches on
// behalf of page-level components. Every request is checked against a
// hostname allow-list before any network call, and every response is
// checked for an image content type and the byte-size cap before it is
// handed back.
package fetchproxy

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxImageBytes is the largest artwork payload the host site accepts.
const MaxImageBytes = 5 * 1024 * 1024

// Rejection reasons. All are wrapped with request specifics; use
// errors.Is to classify.
var (
	ErrInsecureScheme = errors.New("only https URLs are allowed")
	ErrDisallowedHost = errors.New("host is not on the image source allow-list")
	ErrNotAnImage     = errors.New("response is not an image")
	ErrTooLarge       = errors.New("image exceeds the maximum allowed size")
)

// Image is a fetched and validated binary image.
type Image struct {
	Bytes       []byte
	ContentType string
}

// Recognized image content types and their file extensions.
var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Ext returns the file extension for the image content type, or "" when
// the type is not one the upload form accepts.
func (i Image) Ext() string {
	return extByContentType[baseContentType(i.ContentType)]
}

// DataURL encodes the image as a data: URL for transport over the
// messaging channel.
func (i Image) DataURL() string {
	return "data:" + baseContentType(i.ContentType) + ";base64," +
		base64.StdEncoding.EncodeToString(i.Bytes)
}

// Proxy fetches images cross-origin with elevated network permissions.
type Proxy struct {
	httpClient   *http.Client
	allowedHosts []string
	maxBytes     int64
}

// New creates a proxy restricted to the given hosts. A host entry matches
// exactly or as a domain suffix ("bcbits.com" allows "f4.bcbits.com").
func New(allowedHosts []string) *Proxy {
	return &Proxy{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		allowedHosts: allowedHosts,
		maxBytes:     MaxImageBytes,
	}
}

// FetchImage downloads rawURL and returns the validated image. Validation
// failures are returned before any network call when possible (scheme and
// host), otherwise after inspecting the response (content type and size).
func (p *Proxy) FetchImage(ctx context.Context, rawURL string) (Image, error) {
	if err := p.validateURL(rawURL); err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return Image{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	contentType := baseContentType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: got content type %q", ErrNotAnImage, contentType)
	}

	// Reject on the declared length first so oversized payloads are not
	// read at all, then enforce the cap on the actual bytes.
	if resp.ContentLength > p.maxBytes {
		return Image{}, p.tooLarge(resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image body: %w", err)
	}
	if int64(len(body)) > p.maxBytes {
		return Image{}, p.tooLarge(int64(len(body)))
	}

	return Image{Bytes: body, ContentType: contentType}, nil
}

// validateURL enforces the secure-scheme and allow-list checks. Anything
// rejected here never causes a network call.
func (p *Proxy) validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse image URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: got %q", ErrInsecureScheme, u.Scheme)
	}

	host := u.Hostname()
	for _, allowed := range p.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrDisallowedHost, host)
}

func (p *Proxy) tooLarge(size int64) error {
	return fmt.Errorf("%w: %s / %s", ErrTooLarge,
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(p.maxBytes)))
}

// baseContentType strips parameters like "; charset=...".
func baseContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

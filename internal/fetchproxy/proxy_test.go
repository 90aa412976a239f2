package fetchproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestProxy points a proxy at a TLS test server and allows its host.
func newTestProxy(t *testing.T, handler http.HandlerFunc) (*Proxy, string) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	p := New([]string{"127.0.0.1"})
	p.httpClient = srv.Client()
	return p, srv.URL
}

func TestFetchImage_Success(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0} // JPEG magic
	p, url := newTestProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	})

	img, err := p.FetchImage(context.Background(), url+"/cover.jpg")
	if err != nil {
		t.Fatalf("FetchImage() error: %v", err)
	}
	if img.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q", img.ContentType)
	}
	if img.Ext() != "jpg" {
		t.Errorf("Ext() = %q, want jpg", img.Ext())
	}
	if !strings.HasPrefix(img.DataURL(), "data:image/jpeg;base64,") {
		t.Errorf("DataURL() = %q", img.DataURL())
	}
}

func TestFetchImage_DisallowedHostMakesNoRequest(t *testing.T) {
	called := false
	p, _ := newTestProxy(t, func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, err := p.FetchImage(context.Background(), "https://evil.example.com/x.jpg")
	if !errors.Is(err, ErrDisallowedHost) {
		t.Fatalf("err = %v, want ErrDisallowedHost", err)
	}
	if called {
		t.Error("network request was issued for a disallowed host")
	}
}

func TestFetchImage_SuffixMatchAllowsSubdomain(t *testing.T) {
	p := New([]string{"bcbits.com"})

	if err := p.validateURL("https://f4.bcbits.com/img/a1.jpg"); err != nil {
		t.Errorf("subdomain rejected: %v", err)
	}
	if err := p.validateURL("https://notbcbits.com/img/a1.jpg"); !errors.Is(err, ErrDisallowedHost) {
		t.Errorf("lookalike host allowed: %v", err)
	}
}

func TestFetchImage_RejectsInsecureScheme(t *testing.T) {
	p := New([]string{"example.com"})

	_, err := p.FetchImage(context.Background(), "http://example.com/x.jpg")
	if !errors.Is(err, ErrInsecureScheme) {
		t.Fatalf("err = %v, want ErrInsecureScheme", err)
	}
}

func TestFetchImage_RejectsNonImageContentType(t *testing.T) {
	p, url := newTestProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>not found</html>"))
	})

	_, err := p.FetchImage(context.Background(), url+"/cover.jpg")
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("err = %v, want ErrNotAnImage", err)
	}
}

func TestFetchImage_RejectsOversizedPayload(t *testing.T) {
	p, url := newTestProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, 64))
	})
	p.maxBytes = 32

	_, err := p.FetchImage(context.Background(), url+"/big.png")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if !strings.Contains(err.Error(), "32 B") {
		t.Errorf("error %q does not name the limit", err)
	}
}

func TestImage_ExtUnsupportedType(t *testing.T) {
	img := Image{ContentType: "image/tiff"}
	if ext := img.Ext(); ext != "" {
		t.Errorf("Ext() = %q, want empty for unsupported type", ext)
	}
}

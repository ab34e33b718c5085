package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/desertthunder/founders/internal/shared"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		store, err := NewFSStore(t.TempDir(), "")
		if err != nil {
			t.Fatalf("NewFSStore() error = %v", err)
		}

		info, err := store.Put(ctx, "images/a.png", strings.NewReader("png-bytes"), "image/png")
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if info.Size != 9 {
			t.Errorf("expected size 9, got %d", info.Size)
		}
		if info.URL != "/uploads/images/a.png" {
			t.Errorf("expected /uploads/images/a.png, got %s", info.URL)
		}

		rc, err := store.Get(ctx, "images/a.png")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "png-bytes" {
			t.Errorf("expected png-bytes, got %q", data)
		}
	})

	t.Run("Put rejects existing keys", func(t *testing.T) {
		store, _ := NewFSStore(t.TempDir(), "https://cdn.test/")
		_, _ = store.Put(ctx, "k", strings.NewReader("1"), "")
		if _, err := store.Put(ctx, "k", strings.NewReader("2"), ""); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		if got := store.URL("k"); got != "https://cdn.test/k" {
			t.Errorf("expected trimmed public URL, got %s", got)
		}
	})

	t.Run("Invalid keys", func(t *testing.T) {
		store, _ := NewFSStore(t.TempDir(), "")
		for _, key := range []string{"", "/etc/passwd", "../escape", "a/../../b"} {
			if _, err := store.Put(ctx, key, strings.NewReader("x"), ""); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("Put(%q): expected ErrInvalidArgument, got %v", key, err)
			}
		}
	})

	t.Run("Get missing key", func(t *testing.T) {
		store, _ := NewFSStore(t.TempDir(), "")
		if _, err := store.Get(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		store, _ := NewFSStore(t.TempDir(), "")
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := store.Put(cancelled, "k", strings.NewReader("x"), ""); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestKeys(t *testing.T) {
	if key := ImageKey(".PNG"); !strings.HasPrefix(key, "images/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected image key %s", key)
	}
	if ImageKey("") == ImageKey("") {
		t.Error("expected image keys to be unique")
	}

	at := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	key := ArchiveKey(`C:\sheets\founders.csv`, at)
	if !strings.HasPrefix(key, "imports/2025/03/09/") || !strings.HasSuffix(key, "-founders.csv") {
		t.Errorf("unexpected archive key %s", key)
	}
	if key := ArchiveKey("", at); !strings.HasSuffix(key, "-upload.csv") {
		t.Errorf("expected default file name, got %s", key)
	}
}

func TestOpen(t *testing.T) {
	store, err := Open(context.Background(), shared.StorageConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store.Driver() != DriverFS {
		t.Errorf("expected fs driver by default, got %s", store.Driver())
	}

	if _, err := Open(context.Background(), shared.StorageConfig{Driver: "ftp"}); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Open(context.Background(), shared.StorageConfig{Driver: "s3"}); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected missing bucket to fail, got %v", err)
	}
}

// fakeS3 answers path-style PutObject and GetObject requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(req.URL.Path, "/")
	respond := func(status int, body string) *http.Response {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}
	}

	switch req.Method {
	case http.MethodPut:
		if req.Body != nil {
			_, _ = io.Copy(io.Discard, req.Body)
		}
		f.objects[path] = []byte("stored")
		f.puts = append(f.puts, path)
		return respond(http.StatusOK, ""), nil
	case http.MethodGet:
		if data, ok := f.objects[path]; ok {
			return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(data)), Request: req}, nil
		}
		return respond(http.StatusNotFound, `<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`), nil
	}
	return respond(http.StatusNotImplemented, ""), nil
}

func newTestS3(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:    "founders",
		Endpoint:  "https://s3.test",
		AccessKey: "AKIA",
		SecretKey: "SECRET",
		PathStyle: true,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.RetryMaxAttempts = 1
	})
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}
	return store
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newTestS3(t, fake)

	info, err := store.Put(ctx, "imports/a.csv", strings.NewReader("name,email\n"), "text/csv")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(fake.puts) != 1 || fake.puts[0] != "founders/imports/a.csv" {
		t.Errorf("expected one path-style put, got %v", fake.puts)
	}
	if info.URL != "https://s3.test/founders/imports/a.csv" {
		t.Errorf("unexpected URL %s", info.URL)
	}

	rc, err := store.Get(ctx, "imports/a.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	rc.Close()

	if _, err := store.Get(ctx, "imports/missing.csv"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3URL(t *testing.T) {
	tests := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/k"},
		{S3Config{Bucket: "b", PublicURL: "https://cdn.test"}, "https://cdn.test/k"},
		{S3Config{Bucket: "b", Endpoint: "http://minio:9000", PathStyle: true}, "http://minio:9000/b/k"},
	}
	for _, tt := range tests {
		s := &S3Store{cfg: tt.cfg}
		if got := s.URL("k"); got != tt.want {
			t.Errorf("URL() = %s, want %s", got, tt.want)
		}
	}
}

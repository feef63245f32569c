package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	mp4Header = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0, 0, 0, 0, 'i', 's', 'o', 'm', 'm', 'p', '4', '2'}
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Kind
		wantErr error
	}{
		{"png", pngHeader, KindImage, nil},
		{"mp4", mp4Header, KindVideo, nil},
		{"text", []byte("just some text"), "", ErrUnsupportedMedia},
	}
	for _, tt := range tests {
		got, _, err := KindOf(tt.data)
		if got != tt.want || !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.name, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestCloudinaryUpload(t *testing.T) {
	var gotPath, gotPreset, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotPreset = r.FormValue("upload_preset")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFile = header.Filename
		}
		w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/cabin.png"}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "homequest_unsigned", time.Second)
	c.SetBaseURL(srv.URL)

	url, err := c.Upload(context.Background(), File{Name: "cabin.png", Data: pngHeader})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasSuffix(url, "cabin.png") {
		t.Errorf("url: got %q", url)
	}
	if gotPath != "/demo/image/upload" {
		t.Errorf("path: got %q, want /demo/image/upload", gotPath)
	}
	if gotPreset != "homequest_unsigned" || gotFile != "cabin.png" {
		t.Errorf("form: preset %q file %q", gotPreset, gotFile)
	}
}

func TestCloudinaryUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "missing", time.Second)
	c.SetBaseURL(srv.URL)

	_, err := c.Upload(context.Background(), File{Name: "a.png", Data: pngHeader})
	if !errors.Is(err, ErrUploadFailed) || !strings.Contains(err.Error(), "Upload preset not found") {
		t.Errorf("got %v", err)
	}

	if _, err := c.Upload(context.Background(), File{Name: "a.txt", Data: []byte("text")}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("text upload: got %v", err)
	}
}

type stubUploader struct {
	failOn string
	calls  []string
}

func (s *stubUploader) Upload(ctx context.Context, f File) (string, error) {
	s.calls = append(s.calls, f.Name)
	if f.Name == s.failOn {
		return "", ErrUploadFailed
	}
	return "https://cdn.example.com/" + f.Name, nil
}

func TestUploadAllStopsAtFirstFailure(t *testing.T) {
	u := &stubUploader{failOn: "b.png"}
	_, err := UploadAll(context.Background(), u, []File{{Name: "a.png"}, {Name: "b.png"}, {Name: "c.png"}})
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("got %v", err)
	}
	if len(u.calls) != 2 {
		t.Errorf("calls: got %v, want 2", u.calls)
	}
}

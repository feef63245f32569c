// Package media uploads listing photos and videos to the CDN
package media

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUploadFailed     = errors.New("media upload failed")
)

// Kind is the CDN resource type
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// File is one upload
type File struct {
	Name string
	Data []byte
}

// Uploader stores a file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
}

// KindOf sniffs the content and classifies it as image or video
func KindOf(data []byte) (Kind, string, error) {
	mt := mimetype.Detect(data)
	contentType := mt.String()
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage, contentType, nil
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo, contentType, nil
	}
	return "", contentType, ErrUnsupportedMedia
}

// UploadAll uploads files in order and returns their URLs. It stops at the
// first failure.
func UploadAll(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := u.Upload(ctx, f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

var ErrObjectNotFound = errors.New("object not found")

// Store keeps uploaded files under opaque keys such as documents/{userID}/{docID}.pdf.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Mode() Mode
}

type Config struct {
	Mode         Mode
	LocalDir     string
	BucketName   string
	EmulatorHost string
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode)))) {
	case "", ModeLocal:
		return NewLocalStore(log, cfg.LocalDir)
	case ModeGCS, ModeGCSEmulator:
		return NewGCSStore(ctx, log, cfg)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_MODE %q", cfg.Mode)
	}
}

// DocumentKey is the storage key of an uploaded PDF.
func DocumentKey(userID, documentID string) string {
	return fmt.Sprintf("documents/%s/%s.pdf", userID, documentID)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/timeutil"
)

var (
	ErrFileTooLarge   = errors.New("file exceeds the upload size limit")
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// photoExtensions covers what phone cameras actually produce.
var photoExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".webp": true, ".heic": true,
}

// genericExtensions additionally accepts what customers send over chat.
var genericExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".webp": true,
	".heic": true, ".heif": true, ".gif": true, ".pdf": true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// LocalStore keeps uploads on disk under a single flat directory served
// at /uploads/.
type LocalStore struct {
	Dir         string
	MaxFileSize int64
	exposedHost string
}

func NewLocalStore(cfg *config.Config) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{
		Dir:         cfg.Uploads.Dir,
		MaxFileSize: cfg.Uploads.MaxFileSize,
		exposedHost: cfg.Server.ExposedHost,
	}, nil
}

// ValidatePhoto accepts camera image uploads only.
func (s *LocalStore) ValidatePhoto(filename string, size int64, limit int64) error {
	return validate(filename, size, limit, photoExtensions)
}

// ValidateGeneric accepts the wider attachment set.
func (s *LocalStore) ValidateGeneric(filename string, size int64) error {
	return validate(filename, size, s.MaxFileSize, genericExtensions)
}

func validate(filename string, size, limit int64, allowed map[string]bool) error {
	if limit > 0 && size > limit {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		return ErrTypeNotAllowed
	}
	return nil
}

// GenerateName builds a collision-resistant disk name that keeps a
// sanitized trace of the original base name for operators browsing the
// uploads directory.
func (s *LocalStore) GenerateName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeChars.ReplaceAllString(base, "_")
	if len(base) > 40 {
		base = base[:40]
	}

	raw := make([]byte, 4)
	_, _ = rand.Read(raw)

	name := fmt.Sprintf("%d-%s", timeutil.Now().UnixMilli(), hex.EncodeToString(raw))
	if base != "" {
		name += "-" + base
	}
	return name + ext
}

// Save writes the upload to disk under the generated name.
func (s *LocalStore) Save(name string, data []byte) error {
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

// URL builds the public URL an upload is served at, preferring the
// configured exposed host over whatever host header the request carried.
func (s *LocalStore) URL(r *http.Request, name string) string {
	host := s.exposedHost
	if host == "" {
		host = r.Host
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, host, name)
}

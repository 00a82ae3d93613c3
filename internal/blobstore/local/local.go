// Package local stores blobs on the filesystem and issues HMAC-signed,
// expiring read URLs served back through its own HTTP handler.
package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Marcus0035/Looksy/internal/blobstore"
)

type Store struct {
	basePath string
	baseURL  string
	secret   []byte
}

// NewStore creates the blob directory if needed. baseURL is the externally
// reachable server address the signed URLs point at; secret signs them.
func NewStore(basePath, baseURL string, secret []byte) (*Store, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
	}, nil
}

func (s *Store) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close blob after write error", "key", key, "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove blob after write error", "key", key, "error", rerr)
		}
		return "", fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove blob after close error", "key", key, "error", rerr)
		}
		return "", fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}

	return s.baseURL + "/blobs/" + key, nil
}

func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", key, blobstore.ErrKeyNotFound)
		}
		return "", fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}

	exp := time.Now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", s.sign(key, exp))
	return s.baseURL + "/blobs/" + key + "?" + q.Encode(), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", key, blobstore.ErrKeyNotFound)
		}
		return fmt.Errorf("%w: %v", blobstore.ErrUnavailable, err)
	}
	return nil
}

// Handler serves GET /blobs/{key...}, validating the signature and expiry
// minted by SignedURL before streaming the file.
func (s *Store) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /blobs/{key...}", s.serveBlob)
	return mux
}

func (s *Store) serveBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid expiry", http.StatusForbidden)
		return
	}
	if time.Now().Unix() > exp {
		http.Error(w, "url expired", http.StatusForbidden)
		return
	}
	sig := r.URL.Query().Get("sig")
	if !hmac.Equal([]byte(sig), []byte(s.sign(key, exp))) {
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	filePath, err := s.safeJoin(key)
	if err != nil {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return
	}
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to open object", http.StatusInternalServerError)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close blob", "key", key, "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", extToMimeType(filePath))
	w.Header().Set("Cache-Control", "private, max-age=0")
	if _, err := io.Copy(w, f); err != nil {
		slog.Error("failed to stream blob", "key", key, "error", err)
	}
}

func (s *Store) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", key, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *Store) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

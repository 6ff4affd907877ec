// Package files stores customer documents uploaded during the wizard.
package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dharmasatrya/tripbuilder/internal/models"
	"github.com/dharmasatrya/tripbuilder/internal/storage"
)

const MaxSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file is larger than 5MB")
	ErrEmpty           = errors.New("file is empty")
	ErrUnsupportedType = errors.New("only PDF, JPEG and PNG files are accepted")
)

var extensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Sniff reads r fully, up to MaxSize, and returns the content together with
// its detected content type.
func Sniff(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	if len(data) > MaxSize {
		return nil, "", ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if _, ok := extensions[contentType]; !ok {
		return nil, "", ErrUnsupportedType
	}
	return data, contentType, nil
}

// DiskStore writes uploads under a directory that is served at BaseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Put(ctx context.Context, kind models.DocumentKind, fileName string, r io.Reader) (models.Document, error) {
	data, contentType, err := Sniff(r)
	if err != nil {
		return models.Document{}, err
	}

	id := uuid.NewString()
	name := id + extensions[contentType]
	if err := writeFile(filepath.Join(s.dir, name), data); err != nil {
		return models.Document{}, err
	}

	return models.Document{
		ID:          id,
		Kind:        kind,
		URL:         s.baseURL + "/" + name,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *DiskStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrNotFound
	}
	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.dir, id+ext))
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
	}
	return storage.ErrNotFound
}

func writeFile(path string, data []byte) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to store upload: %w", err)
	}
	return os.Rename(tmp, path)
}

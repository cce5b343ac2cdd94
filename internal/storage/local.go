// Package storage keeps uploaded images on local disk and hands out
// stable URL references. The domain layer only ever stores the URLs;
// deleting a product cascades to its files through DeleteByURL.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Subdirectories under the upload root, one per kind of image.
const (
	ProductDir = "products"
	AvatarDir  = "user"
)

// Store saves uploads under root/<kind>/ and builds public URLs from
// baseURL, e.g. http://host/uploads/products/<name>.
type Store struct {
	root    string
	baseURL string
}

func New(root, baseURL string) (*Store, error) {
	for _, d := range []string{ProductDir, AvatarDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes an uploaded file under the given kind directory with a
// generated name (the original name is untrusted client input) and
// returns its public URL.
func (s *Store) Save(fh *multipart.FileHeader, kind string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.root, kind, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.baseURL, "uploads", kind, name), nil
}

// DeleteByURL removes the file a previously issued URL points to. A
// missing file is not an error: the reference may outlive the file
// after a partial cleanup.
func (s *Store) DeleteByURL(url, kind string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, kind, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

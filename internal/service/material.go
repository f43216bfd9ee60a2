package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/studyhub/backend/internal/config"
	"github.com/studyhub/backend/internal/db"
	"github.com/studyhub/backend/internal/metrics"
	"github.com/studyhub/backend/internal/model"
)

var ErrNotFound = errors.New("not found")

const (
	dateLayout = "2006-01-02"
	mebibyte   = 1024 * 1024
)

// MaterialService owns the material catalog and the files behind it in the upload directory.
type MaterialService struct {
	store     *db.MaterialStore
	uploadDir string
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger

	now    func() time.Time
	remove func(name string) error

	pending sync.WaitGroup
}

func NewMaterialService(store *db.MaterialStore, cfg config.StorageConfig, m *metrics.Metrics, logger logrus.FieldLogger) *MaterialService {
	return &MaterialService{
		store:     store,
		uploadDir: cfg.UploadDir,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		remove:    os.Remove,
	}
}

func (s *MaterialService) UploadDir() string {
	return s.uploadDir
}

// Reconcile rebuilds the catalog from the files currently in the upload directory.
// Ids follow the directory listing order, so they are not stable across restarts
// when files change in between. A missing directory leaves the catalog empty.
func (s *MaterialService) Reconcile(ctx context.Context) error {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WithField("dir", s.uploadDir).Warn("upload directory does not exist, starting with empty catalog")
			return nil
		}
		return fmt.Errorf("read upload directory %s: %w", s.uploadDir, err)
	}

	items := make([]model.Material, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("skipping unreadable upload")
			continue
		}

		// Birth time is not portable, so the modification time stands in for the creation date.
		items = append(items, model.Material{
			ID:        int64(len(items) + 1),
			Title:     entry.Name(),
			Type:      MaterialType(entry.Name()),
			DateAdded: info.ModTime().UTC().Format(dateLayout),
			Size:      FormatSize(info.Size()),
			URL:       model.UploadsURLPrefix + entry.Name(),
		})
	}

	if err := s.store.ReplaceMaterials(ctx, items); err != nil {
		return err
	}
	s.metrics.SetMaterials(len(items))
	s.logger.WithFields(logrus.Fields{"dir": s.uploadDir, "materials": len(items)}).Info("material catalog reconciled")
	return nil
}

// AddFile catalogs a file already written to the upload directory as storedFilename.
func (s *MaterialService) AddFile(ctx context.Context, originalName string, sizeBytes int64, storedFilename string) (*model.Material, error) {
	originalName = strings.TrimSpace(originalName)
	if originalName == "" || storedFilename == "" || sizeBytes < 0 {
		return nil, ErrInvalidInput
	}
	if filepath.Base(storedFilename) != storedFilename {
		return nil, fmt.Errorf("%w: stored filename must not contain a path", ErrInvalidInput)
	}

	return s.insert(ctx, model.Material{
		Title:     filepath.Base(originalName),
		Type:      MaterialType(originalName),
		DateAdded: s.now().UTC().Format(dateLayout),
		Size:      FormatSize(sizeBytes),
		URL:       model.UploadsURLPrefix + storedFilename,
	})
}

func (s *MaterialService) AddLink(ctx context.Context, link string) (*model.Material, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, ErrInvalidInput
	}

	return s.insert(ctx, model.Material{
		Title:     link,
		Type:      model.MaterialTypeLink,
		DateAdded: s.now().UTC().Format(dateLayout),
		Size:      model.MaterialSizeNone,
		URL:       link,
	})
}

func (s *MaterialService) List(ctx context.Context) ([]model.Material, error) {
	return s.store.ListMaterials(ctx)
}

// Delete removes the catalog entry. The backing file of a non-link material is
// removed in the background; a failed removal is logged and does not undo the delete.
func (s *MaterialService) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.DeleteMaterial(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	s.metrics.SetMaterials(s.store.CountMaterials())

	if removed.IsLink() {
		return nil
	}

	path, ok := s.backingPath(removed.URL)
	if !ok {
		s.logger.WithField("url", removed.URL).Warn("material has no backing file under the upload directory")
		return nil
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remove(path); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"id": id, "path": path}).Error("failed to delete material file")
		}
	}()
	return nil
}

// StoreUpload writes the uploaded file into the upload directory under a fresh
// collision-resistant name and returns that name.
func (s *MaterialService) StoreUpload(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrInvalidInput
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := NewStoredFilename(fh.Filename, s.now())
	dst, err := os.OpenFile(filepath.Join(s.uploadDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return name, nil
}

// Close waits for background file removals to finish.
func (s *MaterialService) Close() {
	s.pending.Wait()
}

func (s *MaterialService) insert(ctx context.Context, m model.Material) (*model.Material, error) {
	created, err := s.store.InsertMaterial(ctx, m)
	if err != nil {
		return nil, err
	}
	s.metrics.SetMaterials(s.store.CountMaterials())
	s.logger.WithFields(logrus.Fields{"id": created.ID, "type": created.Type}).Info("material added")
	return created, nil
}

func (s *MaterialService) backingPath(url string) (string, bool) {
	name := filepath.Base(strings.TrimPrefix(url, model.UploadsURLPrefix))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}
	return filepath.Join(s.uploadDir, name), true
}

// MaterialType derives the catalog type tag from a file name: the uppercased
// extension without its dot, or FILE when there is none.
func MaterialType(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return model.MaterialTypeFile
	}
	return strings.ToUpper(ext)
}

// FormatSize renders a byte count in mebibytes with two decimals, e.g. "1.50 MB".
func FormatSize(sizeBytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(sizeBytes)/mebibyte)
}

// NewStoredFilename returns "<unix millis>-<uuid><ext>" for the original upload name.
func NewStoredFilename(original string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), filepath.Ext(filepath.Base(original)))
}

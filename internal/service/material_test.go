package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/internal/config"
	"github.com/studyhub/backend/internal/db"
	"github.com/studyhub/backend/internal/logging"
	"github.com/studyhub/backend/internal/model"
)

type recordingRemover struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (r *recordingRemover) remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, name)
	return r.err
}

func (r *recordingRemover) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newTestMaterialService(t *testing.T, dir string) *MaterialService {
	t.Helper()
	svc := NewMaterialService(db.NewMaterialStore(), config.StorageConfig{UploadDir: dir}, nil, logging.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestMaterialTypeAndSize(t *testing.T) {
	assert.Equal(t, "PDF", MaterialType("notes.pdf"))
	assert.Equal(t, "GZ", MaterialType("archive.tar.gz"))
	assert.Equal(t, "FILE", MaterialType("README"))
	assert.Equal(t, "MD", MaterialType("dir/Notes.Md"))

	assert.Equal(t, "0.00 MB", FormatSize(0))
	assert.Equal(t, "1.00 MB", FormatSize(1024*1024))
	assert.Equal(t, "1.50 MB", FormatSize(1024*1024+512*1024))
}

func TestNewStoredFilename(t *testing.T) {
	a := NewStoredFilename("../../etc/lecture.pdf", fixedNow)
	b := NewStoredFilename("lecture.pdf", fixedNow)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotContains(t, a, "/")
	assert.True(t, strings.HasPrefix(a, "1777887000000-"))
}

func TestReconcileMissingDirectory(t *testing.T) {
	svc := newTestMaterialService(t, filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, svc.Reconcile(context.Background()))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReconcileUnreadableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	svc := newTestMaterialService(t, file)

	assert.Error(t, svc.Reconcile(context.Background()))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReconcileBuildsCatalogFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-notes.pdf"), make([]byte, 2*1024*1024), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-README"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c-nested"), 0o755))
	modTime := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a-notes.pdf"), modTime, modTime))

	svc := newTestMaterialService(t, dir)
	require.NoError(t, svc.Reconcile(context.Background()))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, model.Material{
		ID:        1,
		Title:     "a-notes.pdf",
		Type:      "PDF",
		DateAdded: "2025-12-31",
		Size:      "2.00 MB",
		URL:       "/uploads/a-notes.pdf",
	}, items[0])
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, "FILE", items[1].Type)
	assert.Equal(t, "/uploads/b-README", items[1].URL)

	link, err := svc.AddLink(context.Background(), "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), link.ID)
}

func TestAddFileAndLink(t *testing.T) {
	svc := newTestMaterialService(t, t.TempDir())
	ctx := context.Background()

	file, err := svc.AddFile(ctx, "Lecture 1.pptx", 3*1024*1024/2, "1700000000000-abc.pptx")
	require.NoError(t, err)
	assert.Equal(t, model.Material{
		ID:        1,
		Title:     "Lecture 1.pptx",
		Type:      "PPTX",
		DateAdded: "2026-05-04",
		Size:      "1.50 MB",
		URL:       "/uploads/1700000000000-abc.pptx",
	}, *file)

	link, err := svc.AddLink(ctx, "  http://example.com  ")
	require.NoError(t, err)
	assert.Equal(t, model.Material{
		ID:        2,
		Title:     "http://example.com",
		Type:      "LINK",
		DateAdded: "2026-05-04",
		Size:      "-",
		URL:       "http://example.com",
	}, *link)
}

func TestAddRejectsEmptyInput(t *testing.T) {
	svc := newTestMaterialService(t, t.TempDir())
	ctx := context.Background()

	_, err := svc.AddLink(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddFile(ctx, "", 10, "stored.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddFile(ctx, "a.pdf", 10, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddFile(ctx, "a.pdf", 10, "../escape.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	svc := newTestMaterialService(t, t.TempDir())
	ctx := context.Background()

	var want []int64
	for i := 0; i < 5; i++ {
		var (
			m   *model.Material
			err error
		)
		if i%2 == 0 {
			m, err = svc.AddLink(ctx, "http://example.com/"+string(rune('a'+i)))
		} else {
			m, err = svc.AddFile(ctx, "f.txt", 1, NewStoredFilename("f.txt", fixedNow))
		}
		require.NoError(t, err)
		want = append(want, m.ID)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(want))
	for i := range want {
		assert.Equal(t, want[i], items[i].ID)
	}
}

func TestDeleteFileRemovesBackingFile(t *testing.T) {
	dir := t.TempDir()
	svc := newTestMaterialService(t, dir)
	ctx := context.Background()

	stored := "1700000000000-abc.pdf"
	require.NoError(t, os.WriteFile(filepath.Join(dir, stored), []byte("pdf"), 0o644))
	m, err := svc.AddFile(ctx, "notes.pdf", 3, stored)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))
	svc.Close()

	_, err = os.Stat(filepath.Join(dir, stored))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrNotFound)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteLinkSkipsFilesystem(t *testing.T) {
	svc := newTestMaterialService(t, t.TempDir())
	remover := &recordingRemover{}
	svc.remove = remover.remove
	ctx := context.Background()

	m, err := svc.AddLink(ctx, "http://example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))
	svc.Close()
	assert.Empty(t, remover.calls())
}

func TestDeleteSucceedsWhenFileRemovalFails(t *testing.T) {
	dir := t.TempDir()
	svc := newTestMaterialService(t, dir)
	remover := &recordingRemover{err: errors.New("disk on fire")}
	svc.remove = remover.remove
	ctx := context.Background()

	m, err := svc.AddFile(ctx, "notes.pdf", 3, "stored.pdf")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))
	svc.Close()

	assert.Equal(t, []string{filepath.Join(dir, "stored.pdf")}, remover.calls())
	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteUnknownID(t *testing.T) {
	svc := newTestMaterialService(t, t.TempDir())
	assert.ErrorIs(t, svc.Delete(context.Background(), 99), ErrNotFound)
}

func TestStoreUploadWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	svc := newTestMaterialService(t, dir)

	fh := newFileHeader(t, "file", "notes.pdf", []byte("%PDF-1.7"))
	name, err := svc.StoreUpload(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotEqual(t, "notes.pdf", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func newFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

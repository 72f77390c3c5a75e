package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/pkg/logger"
	"github.com/google/uuid"
)

// StagedFile is a file written to the staging area, not yet bound to a
// submission record.
type StagedFile struct {
	OriginalName string
	StoredName   string
	StagedPath   string
	Size         int64
	ContentType  string
}

type StorageService struct {
	cfg *config.StorageConfig
}

func NewStorageService(cfg *config.StorageConfig) *StorageService {
	return &StorageService{cfg: cfg}
}

// EnsureDirs creates the upload and staging directories if missing.
func (s *StorageService) EnsureDirs() error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.MkdirAll(s.cfg.StagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	return nil
}

// Stage writes an uploaded file into the staging area under a random
// name. The original filename never touches the filesystem.
func (s *StorageService) Stage(fh *multipart.FileHeader) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := sanitizeExt(filepath.Ext(fh.Filename))
	storedName := uuid.New().String() + ext
	stagedPath := filepath.Join(s.cfg.StagingDir, storedName)

	dst, err := os.Create(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(stagedPath)
		return nil, fmt.Errorf("write staged file: %w", err)
	}

	return &StagedFile{
		OriginalName: filepath.Base(fh.Filename),
		StoredName:   storedName,
		StagedPath:   stagedPath,
		Size:         size,
		ContentType:  fh.Header.Get("Content-Type"),
	}, nil
}

// Promote moves a staged file into permanent storage and returns its
// final path. Called inside the submission transaction after the
// database rows are written.
func (s *StorageService) Promote(staged *StagedFile) (string, error) {
	finalPath := filepath.Join(s.cfg.UploadDir, staged.StoredName)
	if err := os.Rename(staged.StagedPath, finalPath); err != nil {
		// Rename fails across filesystems, fall back to copy+remove.
		if copyErr := copyFile(staged.StagedPath, finalPath); copyErr != nil {
			return "", fmt.Errorf("promote staged file: %w", copyErr)
		}
		os.Remove(staged.StagedPath)
	}
	return finalPath, nil
}

// Discard removes staged files after a failed transaction.
func (s *StorageService) Discard(staged []*StagedFile) {
	for _, f := range staged {
		if err := os.Remove(f.StagedPath); err != nil && !os.IsNotExist(err) {
			logger.Warnf("[Storage] Failed to discard staged file %s: %v", f.StoredName, err)
		}
	}
}

// Remove deletes a promoted file from permanent storage.
func (s *StorageService) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepStaging deletes staged files older than the configured age.
// Orphans accumulate when a request dies between staging and the
// submission transaction.
func (s *StorageService) SweepStaging() (int, error) {
	maxAge := time.Duration(s.cfg.SweepAgeHours) * time.Hour
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(s.cfg.StagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.cfg.StagingDir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		logger.Infof("[Storage] Swept %d orphaned staged files", removed)
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

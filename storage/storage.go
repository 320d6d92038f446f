package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/models"
)

const backupDir = "backups"
const backupTimeLayout = "20060102_150405"

// Store persists the canonical dataset at a single file path, taking a
// timestamped backup copy before every overwrite. It assumes a single
// writer; concurrent pipeline runs against the same path are unsupported.
type Store struct {
	path string
	log  logger.Logger
}

func NewStore(path string) *Store {
	return &Store{path: path, log: logger.Log}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the full dataset. A missing file is an empty dataset, not an
// error; an unreadable file is logged and also treated as empty so one
// corrupt read never aborts a run (the pre-overwrite backup covers recovery).
func (s *Store) Load() ([]models.Post, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Infof("no dataset at %s, starting empty", s.path)
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	defer f.Close()

	var posts []models.Post
	if err := gocsv.UnmarshalFile(f, &posts); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []models.Post{}, nil
		}
		s.log.Errorf("failed to read dataset %s: %v", s.path, err)
		return []models.Post{}, nil
	}
	s.log.Infof("loaded %d posts from %s", len(posts), s.path)
	return posts, nil
}

// Save replaces the dataset file with the given rows. If a file already
// exists it is first copied verbatim into backups/; a backup failure is
// logged but never blocks the save. The write itself goes to a temp file in
// the target directory and is renamed into place, so a reader never observes
// a truncated dataset and a failed save leaves the previous file intact.
func (s *Store) Save(posts []models.Post) error {
	s.backupExisting()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, stem(s.path)+"_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := gocsv.MarshalFile(&posts, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("flush dataset: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dataset %s: %w", s.path, err)
	}
	s.log.Infof("saved %d posts to %s", len(posts), s.path)
	return nil
}

// MergeAndSave is the read-modify-write used by the pipeline: merge the new
// batch against the persisted dataset, save, and return the combined rows
// along with what the dedup did.
func (s *Store) MergeAndSave(newBatch []models.Post, keys []string) ([]models.Post, DedupStats, error) {
	existing, err := s.Load()
	if err != nil {
		return nil, DedupStats{}, err
	}
	combined, stats := Merge(newBatch, existing, keys)
	if err := s.Save(combined); err != nil {
		return nil, stats, err
	}
	return combined, stats, nil
}

func (s *Store) backupExisting() {
	if _, err := os.Stat(s.path); err != nil {
		return
	}

	ts := time.Now().Format(backupTimeLayout)
	name := fmt.Sprintf("%s_backup_%s%s", stem(s.path), ts, filepath.Ext(s.path))
	dst := filepath.Join(filepath.Dir(s.path), backupDir, name)

	if err := copyFile(s.path, dst); err != nil {
		s.log.Warnf("failed to create backup %s: %v", dst, err)
		return
	}
	s.log.Infof("created backup %s", dst)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Package attachments is the temp attachment store (spec §4.6): per-id
// files under a configured directory, atomic create via write-to-temp then
// rename so retrieve never observes torn bytes.
package attachments

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.Attachments)

const (
	originalSuffix  = ".original"
	thumbnailSuffix = ".thumbnail"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) originalPath(id types.AttachmentId) string  { return filepath.Join(s.dir, id.String()+originalSuffix) }
func (s *Store) thumbnailPath(id types.AttachmentId) string { return filepath.Join(s.dir, id.String()+thumbnailSuffix) }

// Save writes the original and, if non-empty, the thumbnail. Empty
// thumbnails are not written (spec §4.6).
func (s *Store) Save(id types.AttachmentId, original, thumbnail []byte) error {
	if err := atomicWrite(s.originalPath(id), original); err != nil {
		return errors.Wrap(err, "write original")
	}
	if len(thumbnail) > 0 {
		if err := atomicWrite(s.thumbnailPath(id), thumbnail); err != nil {
			return errors.Wrap(err, "write thumbnail")
		}
	}
	return nil
}

// Retrieve returns (original, thumbnail, found). found is false when the
// original file is missing; thumbnail is nil if it was never written.
func (s *Store) Retrieve(id types.AttachmentId) (original, thumbnail []byte, found bool, err error) {
	original, err = ioutil.ReadFile(s.originalPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, false, nil
		}
		return nil, nil, false, errors.Wrap(err, "read original")
	}
	thumbnail, err = ioutil.ReadFile(s.thumbnailPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return original, nil, true, nil
		}
		return nil, nil, false, errors.Wrap(err, "read thumbnail")
	}
	return original, thumbnail, true, nil
}

// Delete removes both files for id; absent files are not an error (spec
// §4.6).
func (s *Store) Delete(id types.AttachmentId) error {
	for _, p := range []string{s.originalPath(id), s.thumbnailPath(id)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", p)
		}
	}
	return nil
}

// CleanupOrphans removes every file last-modified before now-olderThan.
// Best-effort: a single file's stat/remove failure is logged and skipped
// so the sweep still covers the rest of the directory.
func (s *Store) CleanupOrphans(olderThan time.Duration) (removed int, err error) {
	cutoff := time.Now().Add(-olderThan)
	entries, err := ioutil.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Wrap(err, "list attachment directory")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("orphan cleanup failed to remove file", "path", path, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

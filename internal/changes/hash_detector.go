package changes

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/mizchi/lsif-indexer/internal/config"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

// HashOnlyDetector walks the tree and fingerprints every non-excluded
// file with xxHash64, comparing against a persisted path→hash map.
// Used when the project root has no .git directory.
type HashOnlyDetector struct {
	Exclude *config.ExcludeMatcher
}

// NewHashOnlyDetector builds a detector using the given exclude globs in
// addition to the fixed directory-name exclusions.
func NewHashOnlyDetector(extraExcludeGlobs []string) *HashOnlyDetector {
	return &HashOnlyDetector{Exclude: config.NewExcludeMatcher(extraExcludeGlobs)}
}

// Detect walks projectRoot, hashes every file that survives exclusion,
// and diffs the result against priorHashes. lastCommit is unused by this
// strategy; it exists to satisfy Detector.
func (d *HashOnlyDetector) Detect(projectRoot string, _ string, priorHashes map[string]uint64) ([]Change, error) {
	current := make(map[string]uint64)

	err := filepath.WalkDir(projectRoot, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if entry.IsDir() {
			if d.Exclude.MatchDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Exclude.MatchFile(rel) {
			return nil
		}

		hash, hashErr := hashFile(path)
		if hashErr != nil {
			return nil // unreadable file: skip, don't abort the whole walk
		}
		current[rel] = hash
		return nil
	})
	if err != nil {
		return nil, lsiferrors.NewIoError("walk", projectRoot, err)
	}

	var out []Change
	for path, hash := range current {
		prior, existed := priorHashes[path]
		switch {
		case !existed:
			out = append(out, Change{Path: path, Status: Added, ContentHash: hash, HasHash: true})
		case prior != hash:
			out = append(out, Change{Path: path, Status: Modified, ContentHash: hash, HasHash: true})
		}
	}
	for path := range priorHashes {
		if _, ok := current[path]; !ok {
			out = append(out, Change{Path: path, Status: Deleted})
		}
	}

	return out, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// enumerate lists the regular files under root whose slash-separated
// relative path matches the include glob, sorted lexicographically.
// Hidden files are skipped and hidden directories are not descended.
// A positive limit truncates the sorted list.
func enumerate(fs afero.Fs, root, include string, limit int) ([]string, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.NewValidationError("input", "cannot open directory"), err)
	}
	if !info.IsDir() {
		return nil, domain.NewValidationError("input", fmt.Sprintf("%s is not a directory", root))
	}

	var files []string
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		ok, err := doublestar.Match(include, rel)
		if err != nil {
			return fmt.Errorf("include %q: %w", include, err)
		}
		if ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// partition splits files into consecutive batches of at most size files.
func partition(files []string, size int) []batch {
	batches := make([]batch, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		batches = append(batches, batch{index: len(batches), files: files[start:end]})
	}
	return batches
}

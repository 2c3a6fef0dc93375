package compiler

import (
	"os"
	"path/filepath"
	"sort"

	"tlog.app/go/errors"
)

var ErrNotSource = errors.New("not a " + SourceExt + " file")

// Sources expands paths into source files.
// A directory contributes its own source files, sorted, without recursion.
func Sources(paths []string) (files []string, err error) {
	for _, p := range paths {
		inf, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "source %v", p)
		}

		if !inf.IsDir() {
			if filepath.Ext(p) != SourceExt {
				return nil, errors.Wrap(ErrNotSource, "%v", p)
			}

			files = append(files, p)

			continue
		}

		ents, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrap(err, "read dir %v", p)
		}

		var dir []string

		for _, e := range ents {
			if e.IsDir() || filepath.Ext(e.Name()) != SourceExt {
				continue
			}

			dir = append(dir, filepath.Join(p, e.Name()))
		}

		sort.Strings(dir)

		files = append(files, dir...)
	}

	return files, nil
}

// Package mdmerge concatenates the Markdown files of a directory into one file.
package mdmerge

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	dserrors "github.com/dotsible/dotsible/internal/errors"
)

// Extension selects the files that are merged.
const Extension = ".md"

// separator follows every merged file.
const separator = "\n\n"

// Result describes a completed merge.
type Result struct {
	Files      int
	OutputPath string
}

// Merge writes every .md file of dir, in listing order and each followed by
// a blank line, to outName inside dir.
//
// The listing is taken and every input read before the output is opened, so
// an existing output whose name ends in .md is merged with its previous
// contents.
func Merge(fs afero.Fs, dir, outName string) (Result, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return Result{}, dserrors.IO(dir, "cannot list input directory", err)
	}

	var buf bytes.Buffer
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Result{}, dserrors.IO(path, "cannot read input file", err)
		}
		buf.Write(data)
		buf.WriteString(separator)
		files++
	}

	outPath := OutputPath(dir, outName)
	if err := afero.WriteFile(fs, outPath, buf.Bytes(), 0644); err != nil {
		return Result{}, dserrors.IO(outPath, "cannot write output file", err)
	}

	return Result{Files: files, OutputPath: outPath}, nil
}

// OutputPath resolves the output file name against the input directory.
// Absolute names are used as given.
func OutputPath(dir, outName string) string {
	if filepath.IsAbs(outName) {
		return outName
	}
	return filepath.Join(dir, outName)
}

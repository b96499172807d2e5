package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"factory/codec"
)

// Job recolors Source into Destination.
type Job struct {
	Source      string
	Destination string
}

// Stage is the position of a job in its lifecycle.
type Stage int

const (
	Pending Stage = iota
	Decoding
	Recoloring
	Encoding
	Succeeded
	Failed
)

func (s Stage) String() string {
	switch s {
	case Pending:
		return "pending"
	case Decoding:
		return "decoding"
	case Recoloring:
		return "recoloring"
	case Encoding:
		return "encoding"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// FailureKind classifies why a job failed.
type FailureKind int

const (
	// KindIO covers unreadable sources, unsupported formats and unwritable
	// destinations.
	KindIO FailureKind = iota
	// KindInternal is a broken engine contract. It should never happen.
	KindInternal
)

func (k FailureKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInternal:
		return "internal"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Failure records a job that ended in the Failed stage.
type Failure struct {
	Path  string
	Kind  FailureKind
	Stage Stage
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s error while %s: %v", f.Path, f.Kind, f.Stage, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Plan builds one job per source. The destination is the source file name
// with prefix prepended, in outDir or next to the source when outDir is
// empty. Sources in a format that cannot be written, such as WebP, get a
// PNG destination. A source listed twice gets one job. Two sources sharing a
// destination, or a source that is its own destination, are an error.
func Plan(sources []string, prefix, outDir string) ([]Job, error) {
	if prefix == "" && outDir == "" {
		return nil, errors.New("either a prefix or an output folder is needed, or sources would be overwritten")
	}

	jobs := make([]Job, 0, len(sources))
	planned := make(map[string]bool, len(sources))
	writers := make(map[string]string, len(sources))
	for _, src := range sources {
		if planned[filepath.Clean(src)] {
			continue
		}
		planned[filepath.Clean(src)] = true

		dir, name := filepath.Split(src)
		if outDir != "" {
			dir = outDir
		}
		if _, err := codec.Format(name); err != nil {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
		}
		dest := filepath.Join(dir, prefix+name)
		if dest == filepath.Clean(src) {
			return nil, fmt.Errorf("%q would be overwritten by its own result", src)
		}
		if prev, ok := writers[dest]; ok {
			return nil, fmt.Errorf("%q and %q would both be saved to %q", prev, src, dest)
		}
		writers[dest] = src

		jobs = append(jobs, Job{
			Source:      src,
			Destination: dest,
		})
	}
	return jobs, nil
}

// Package jctfile persists jctval trees to disk.
//
// Save writes the canonical document to a temporary sibling and renames
// it over the target, so no partial file is observable under the target
// path. A rename that fails because source and target live on different
// filesystems falls back to a stream copy, which truncates the target
// and rewrites it in place.
package jctfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctparse"
	"github.com/lattice-substrate/jct/jctser"
	"github.com/lattice-substrate/jct/jctval"
)

// MaxFileSize is the largest file Load will read (100 MiB).
const MaxFileSize = 100 * 1024 * 1024

const copyChunkSize = 4096

// Load reads and parses the JSON document at path. An empty file yields
// an empty object. Content trailing the first value is tolerated with a
// diagnostic on warn (when non-nil).
func Load(path string, warn io.Writer) (*jctval.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classifyIOError(path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, jcterr.Newf(jcterr.BoundExceeded,
			"%s: file size %d exceeds maximum %d", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyIOError(path, err)
	}
	if len(data) == 0 {
		return jctval.Object(), nil
	}
	v, trailing, err := jctparse.Parse(data)
	if err != nil {
		return nil, err
	}
	if len(trailing) > 0 && warn != nil {
		fmt.Fprintf(warn, "Warning: %s: %d bytes of trailing content after JSON value\n",
			path, len(trailing))
	}
	return v, nil
}

// LoadLenient is Load with the parse-failure policy of the tool: a file
// that fails to parse yields an empty object and a one-line diagnostic
// instead of an error. I/O errors are still returned.
func LoadLenient(path string, warn io.Writer) (*jctval.Value, error) {
	v, err := Load(path, warn)
	if err == nil {
		return v, nil
	}
	var je *jcterr.Error
	if errors.As(err, &je) && (je.Class == jcterr.ParseError || je.Class == jcterr.BoundExceeded) {
		if warn != nil {
			fmt.Fprintf(warn, "Warning: %s: %v; starting from empty object\n", path, err)
		}
		return jctval.Object(), nil
	}
	return nil, err
}

// Save atomically writes the canonical document for v to path.
// After a Save that fails before or at the rename the previous target
// content is intact; a failure during the cross-device stream copy can
// leave the target partially written. No temporary file is left behind.
func Save(path string, v *jctval.Value) error {
	doc, err := jctser.Document(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "create temp file", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(doc); err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if !isCrossDevice(err) {
			os.Remove(tmpPath)
			return jcterr.Wrap(jcterr.IOFailure, -1, "rename temp to target", err)
		}
		if err := copyFile(tmpPath, path); err != nil {
			os.Remove(tmpPath)
			return err
		}
		os.Remove(tmpPath)
	}

	success = true
	syncDir(dir)
	return nil
}

// isCrossDevice reports whether a rename failed because source and
// target are on different filesystems.
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// copyFile streams src to dst in fixed-size chunks.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "open temp for copy", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "open target for copy", err)
	}

	buf := make([]byte, copyChunkSize)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return jcterr.Wrap(jcterr.IOFailure, -1, "copy to target", werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return jcterr.Wrap(jcterr.IOFailure, -1, "read temp during copy", rerr)
		}
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return jcterr.Wrap(jcterr.IOFailure, -1, "sync target", err)
	}
	if err := out.Close(); err != nil {
		return jcterr.Wrap(jcterr.IOFailure, -1, "close target", err)
	}
	return nil
}

// syncDir attempts to fsync the directory for crash-consistent
// durability. Errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

// classifyIOError maps a filesystem error to the jct failure taxonomy.
func classifyIOError(path string, err error) *jcterr.Error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return jcterr.Wrap(jcterr.NotFound, -1, path, err)
	case errors.Is(err, os.ErrPermission):
		return jcterr.Wrap(jcterr.PermissionDenied, -1, path, err)
	default:
		return jcterr.Wrap(jcterr.IOFailure, -1, path, err)
	}
}

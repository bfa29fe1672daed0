// Package materialize performs the filesystem mutations driven by match
// results: copying matched or non-matched sets, fanning a file out to mix
// description folders, overwriting matched reference files, and adding new
// files with backup-on-conflict.
package materialize

import (
	"fmt"
	"io"
	"os"

	"schematch/internal/platform"
)

// copyFile copies src to dst, preserving the source modification time.
// Paths are converted to extended-length form so deep Windows trees work.
func copyFile(src, dst string) error {
	srcLong := platform.LongPath(src)
	dstLong := platform.LongPath(dst)

	info, err := os.Stat(srcLong)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	in, err := os.Open(srcLong)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstLong, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dstLong)
		return fmt.Errorf("failed to copy data: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dstLong)
		return fmt.Errorf("failed to close destination: %w", err)
	}

	os.Chtimes(dstLong, info.ModTime(), info.ModTime())
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(platform.LongPath(path))
	return err == nil && !info.IsDir()
}

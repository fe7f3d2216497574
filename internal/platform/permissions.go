package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
	FilePermSecure os.FileMode = 0600
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// WriteFileSecure writes data readable by the owner only. The mode is
// re-applied after writing since os.WriteFile leaves an existing file's
// permissions unchanged.
func WriteFileSecure(path string, data []byte) error {
	if err := os.WriteFile(path, data, FilePermSecure); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := Chmod(path, FilePermSecure); err != nil {
		return fmt.Errorf("restricting permissions on %s: %w", path, err)
	}
	return nil
}

package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskUsage describes the file system holding a path
type DiskUsage struct {
	Path      string `json:"path" yaml:"path"`
	Total     uint64 `json:"total" yaml:"total"`
	Free      uint64 `json:"free" yaml:"free"`
	Available uint64 `json:"available" yaml:"available"`
}

// UsedPct returns the used share of the file system in percent
func (d *DiskUsage) UsedPct() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Total-d.Free) / float64(d.Total) * 100
}

// GetDiskUsage reports the file system of path. A path that does not exist yet is measured at
// its nearest existing parent, so a build directory can be checked before it is created.
func GetDiskUsage(path string) (*DiskUsage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	dir := abs
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no existing parent of %s", abs)
		}
		dir = parent
	}

	usage, err := diskUsage(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk statistics for %s: %w", dir, err)
	}
	usage.Path = abs
	return usage, nil
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package system

import (
	"fmt"
	"runtime"
)

func diskUsage(dir string) (*DiskUsage, error) {
	return nil, fmt.Errorf("disk usage is not supported on %s", runtime.GOOS)
}

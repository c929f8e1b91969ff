//go:build windows

package system

import "golang.org/x/sys/windows"

func diskUsage(dir string) (*DiskUsage, error) {
	ptr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return nil, err
	}
	var available, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &available, &total, &free); err != nil {
		return nil, err
	}
	return &DiskUsage{Total: total, Free: free, Available: available}, nil
}

//go:build windows

package logline

import (
	"os"

	"golang.org/x/sys/windows"
)

const lockRange = ^uint32(0)

// lockFile blocks until it holds an exclusive lock on fh.
func lockFile(fh *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(fh.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, lockRange, lockRange, ol)
}

func unlockFile(fh *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(fh.Fd()), 0, lockRange, lockRange, ol)
}

//go:build unix

package logline

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile blocks until it holds an exclusive lock on fh.
func lockFile(fh *os.File) error {
	for {
		err := unix.Flock(int(fh.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(fh *os.File) error {
	return unix.Flock(int(fh.Fd()), unix.LOCK_UN)
}

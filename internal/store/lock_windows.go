//go:build windows

package store

import (
	"os"

	"golang.org/x/sys/windows"
)

const lockSuffix = ".lock"

// the whole lock file is one region; its contents are never read
const lockRegion = ^uint32(0)

func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, lockRegion, lockRegion, ol)
}

func unlockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockRegion, lockRegion, ol)
}

package index

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrIndexLocked is returned when another batch run holds the index lock.
var ErrIndexLocked = errors.New("index is locked by another run")

type indexLock struct {
	file *os.File
}

// acquireLock takes an exclusive, non-blocking flock on path. An empty path
// disables locking.
func acquireLock(path string) (*indexLock, error) {
	if path == "" {
		return &indexLock{}, nil
	}

	lockFile, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index lock: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, ErrIndexLocked
		}
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}

	return &indexLock{file: lockFile}, nil
}

func (l *indexLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

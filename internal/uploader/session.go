package uploader

import (
	"fmt"

	"github.com/gofrs/flock"
)

// acquireLock takes the configured session lock, or returns nil when no
// lock file is configured (tests, embedded use).
func (s *Service) acquireLock() (*flock.Flock, error) {
	if s.cfg.Paths.LockFile == "" {
		return nil, nil
	}
	if err := s.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	lock := flock.New(s.cfg.Paths.LockFile)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionBusy
	}
	return lock, nil
}

func (s *Service) releaseLock(lock *flock.Flock) {
	if lock == nil {
		return
	}
	_ = lock.Unlock()
}

package chat

import "sync"

// userLocks serializes exchanges per user so two concurrent SendMessage
// calls cannot both pass the pre-flight balance check before either debits.
// The map holds one mutex per user ever seen and is never evicted; at a few
// dozen bytes per entry it outgrows memory only far beyond the user counts
// a single sqlite-backed process can serve.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: map[uint]*sync.Mutex{}}
}

func (l *userLocks) lock(userID uint) (release func()) {
	l.mu.Lock()
	m := l.locks[userID]
	if m == nil {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

package booking

import "sync"

// bookingLocks serializes transitions per booking id. Transitions on
// different bookings proceed in parallel; there is no global lock. Entries
// are reference counted so the map does not grow with booking history.
type bookingLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newBookingLocks() *bookingLocks {
	return &bookingLocks{locks: make(map[string]*lockEntry)}
}

// acquire blocks until the per-booking lock is held and returns the release
// function. The lock guards the state read-modify-write only; callers must
// not hold it across processor or dispatcher calls.
func (l *bookingLocks) acquire(bookingID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[bookingID]
	if !ok {
		entry = &lockEntry{}
		l.locks[bookingID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, bookingID)
		}
		l.mu.Unlock()
	}
}

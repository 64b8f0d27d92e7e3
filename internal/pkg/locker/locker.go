package locker

import "sync"

// Keyed serializes work per key. Every mutation touching one book's copy
// counter and its reservation queue must run under that book's lock;
// operations on different books proceed independently.
type Keyed struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewKeyed creates a new keyed locker
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uint]*sync.Mutex)}
}

func (k *Keyed) get(key uint) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the lock for key, blocking until it is free
func (k *Keyed) Lock(key uint) {
	k.get(key).Lock()
}

// Unlock releases the lock for key
func (k *Keyed) Unlock(key uint) {
	k.get(key).Unlock()
}

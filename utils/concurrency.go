package utils

import "sync"

// KeyedMutex hands out one mutex per key, creating them lazily. It serializes
// check-then-act sequences against the same key (user id) while leaving work
// on distinct keys fully concurrent. Mutexes live for the process lifetime;
// the map is bounded by the number of distinct keys ever locked.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (km *KeyedMutex) get(key string) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()

	l, ok := km.locks[key]
	if !ok {
		l = &sync.Mutex{}
		km.locks[key] = l
	}
	return l
}

// Lock acquires the mutex for key, creating it on first use.
func (km *KeyedMutex) Lock(key string) {
	km.get(key).Lock()
}

// Unlock releases the mutex for key.
func (km *KeyedMutex) Unlock(key string) {
	km.get(key).Unlock()
}

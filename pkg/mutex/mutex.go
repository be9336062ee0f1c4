package mutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes work per key. Entries are dropped once no holder or
// waiter references them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	if km.entries == nil {
		km.entries = make(map[string]*entry)
	}
	e, ok := km.entries[key]
	if !ok {
		e = &entry{}
		km.entries[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()
}

func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	e, ok := km.entries[key]
	if !ok {
		km.mu.Unlock()
		panic("mutex: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(km.entries, key)
	}
	km.mu.Unlock()

	e.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.entries)
}

package mutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km KeyedMutex
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("user")
			defer km.Unlock("user")
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
	require.Zero(t, km.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	var km KeyedMutex
	km.Lock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done

	km.Unlock("a")
	require.Zero(t, km.Len())
}

func TestKeyedMutex_UnlockUnknownPanics(t *testing.T) {
	var km KeyedMutex
	require.Panics(t, func() { km.Unlock("missing") })
}

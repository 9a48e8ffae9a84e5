package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	k := NewKeyedMutex()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("auction")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, k.Len())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := NewKeyedMutex()
	unlockA := k.Lock("a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	assert.Equal(t, 1, k.Len())
}

func TestKeyedMutexUnlockTwice(t *testing.T) {
	k := NewKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	unlock()

	assert.Zero(t, k.Len())
	k.Lock("a")()
}

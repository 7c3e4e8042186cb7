// Package keylock - мьютексы по строковому ключу для одного процесса.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	// буферизованный канал емкостью 1 работает как мьютекс, который можно ждать в select
	ch   chan struct{}
	refs int
}

// KeyedMutex сериализует работу по ключу. Ключи независимы друг от друга,
// записи удаляются, когда их никто не держит и не ждет.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Lock ждет освобождения ключа или отмены ctx. Возвращенную функцию нужно вызвать ровно один раз.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	e := k.acquireRef(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.releaseRef(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.releaseRef(key, e)
		})
	}, nil
}

// Len - количество ключей, которые сейчас заняты или ожидаются.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedMutex) acquireRef(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) releaseRef(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

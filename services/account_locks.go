package services

import (
	"sort"
	"sync"
)

// accountLocks сериализует изменения баланса одного счета внутри процесса
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*accountLock)}
}

// Lock захватывает блокировки счетов в отсортированном порядке и
// возвращает функцию освобождения; повторяющиеся ID захватываются один раз
func (l *accountLocks) Lock(ids ...string) (unlock func()) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	held := make([]*accountLock, 0, len(unique))
	for _, id := range unique {
		lock := l.acquire(id)
		lock.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
			l.release(unique[i], held[i])
		}
	}
}

func (l *accountLocks) acquire(id string) *accountLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		lock = &accountLock{}
		l.locks[id] = lock
	}
	lock.refs++
	return lock
}

func (l *accountLocks) release(id string, lock *accountLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, id)
	}
}

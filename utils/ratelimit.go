package utils

import (
	"sync"
	"time"
)

// RateLimiter ограничивает число запросов на ключ в скользящем окне
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Limit возвращает максимальное число запросов в окне
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow регистрирует запрос и сообщает, разрешен ли он,
// сколько запросов осталось и когда окно освободится
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	recent := rl.prune(key, now)

	if len(recent) >= rl.limit {
		return false, 0, recent[0].Add(rl.window)
	}

	recent = append(recent, now)
	rl.requests[key] = recent
	return true, rl.limit - len(recent), recent[0].Add(rl.window)
}

// Reset сбрасывает счетчик для ключа
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, key)
}

// prune отбрасывает запросы старше окна; вызывается под mu
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)
	requests := rl.requests[key]

	i := 0
	for i < len(requests) && !requests[i].After(windowStart) {
		i++
	}
	recent := requests[i:]
	if len(recent) == 0 {
		delete(rl.requests, key)
		return nil
	}
	rl.requests[key] = recent
	return recent
}

package lang

import (
	"sync"
)

var interning struct {
	mu     sync.Mutex
	active int
	table  map[string]*Expression
}

// InterningSession keeps literal expression interning enabled until it is
// released. Sessions nest; the interning table is dropped when the last one
// is released.
type InterningSession struct {
	once sync.Once
}

// EnableInterning starts an interning session. Callers should defer
// Release on the returned session.
func EnableInterning() *InterningSession {
	interning.mu.Lock()
	defer interning.mu.Unlock()

	interning.active++
	if interning.active == 1 {
		interning.table = make(map[string]*Expression)
	}

	return &InterningSession{}
}

// Release ends the session. Only the first call has an effect.
func (s *InterningSession) Release() {
	s.once.Do(func() {
		interning.mu.Lock()
		defer interning.mu.Unlock()

		interning.active--
		if interning.active == 0 {
			interning.table = nil
		}
	})
}

// InterningEnabled reports whether any interning session is active.
func InterningEnabled() bool {
	interning.mu.Lock()
	defer interning.mu.Unlock()

	return interning.active > 0
}

// internLiteral returns the interned expression for s, creating it with
// build if needed. Without an active session it always calls build.
func internLiteral(s string, build func() *Expression) *Expression {
	interning.mu.Lock()
	defer interning.mu.Unlock()

	if interning.table == nil {
		return build()
	}

	if e, ok := interning.table[s]; ok {
		return e
	}

	e := build()
	interning.table[s] = e

	return e
}

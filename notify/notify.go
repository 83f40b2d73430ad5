// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package notify broadcasts that a build finished and repository state may
// have changed.
package notify

import (
	"sync"
)

// Notifier is a zero-payload broadcast. Subscribers are called synchronously,
// in subscription order, on the goroutine that fires.
type Notifier struct {
	mu     sync.Mutex
	next   uint64
	fns    map[uint64]func()
	order  []uint64
	firing sync.Mutex
}

func New() *Notifier {
	return &Notifier{
		fns: make(map[uint64]func()),
	}
}

// Subscribe registers fn. The returned function removes it and is safe to
// call more than once.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.fns[id] = fn
	n.order = append(n.order, id)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.fns, id)
			for i, o := range n.order {
				if o == id {
					n.order = append(n.order[:i:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Fire calls every current subscriber once.
func (n *Notifier) Fire() {
	n.firing.Lock()
	defer n.firing.Unlock()

	n.mu.Lock()
	fns := make([]func(), 0, len(n.order))
	for _, id := range n.order {
		fns = append(fns, n.fns[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len is the number of current subscribers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.order)
}

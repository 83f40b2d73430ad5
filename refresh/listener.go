// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"github.com/xmidt-org/repodeck/model"
)

// Event is one item of the repository stream: either a collection or the
// error that ended a refresh cycle.
type Event struct {
	Repositories model.Repositories
	Err          error
}

// Listener is something that receives the repository stream.
//
// Update is called with the coordinator's publish lock held, so it must not
// block and must not subscribe or unsubscribe.
type Listener interface {
	Update(e Event)
}

// ListenerFunc is a function type that implements Listener.
type ListenerFunc func(e Event)

func (l ListenerFunc) Update(e Event) {
	l(e)
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xmidt-org/repodeck/refresh"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// server-sent event names
const (
	RepositoriesEvent  = "repositories"
	ErrorEvent         = "error"
	BuildCompleteEvent = "build-complete"
)

const (
	defaultEventBuffer    = 16
	defaultEventKeepAlive = 30 * time.Second
)

// EventsConfig tunes the event stream.
type EventsConfig struct {
	// Buffer is how many events a slow client may lag behind before newer
	// events are dropped for it.
	Buffer int

	// KeepAlive is the interval between comment lines sent to idle clients.
	KeepAlive time.Duration
}

type sseEvent struct {
	name string
	data interface{}
}

type eventsHandler struct {
	repos     Repositories
	notifier  Notifications
	buffer    int
	keepAlive time.Duration
}

func newEventsHandler(r Repositories, n Notifications, config EventsConfig) *eventsHandler {
	if config.Buffer <= 0 {
		config.Buffer = defaultEventBuffer
	}
	if config.KeepAlive <= 0 {
		config.KeepAlive = defaultEventKeepAlive
	}
	return &eventsHandler{
		repos:     r,
		notifier:  n,
		buffer:    config.Buffer,
		keepAlive: config.KeepAlive,
	}
}

// ServeHTTP streams the repository collection, refresh errors and build
// completions to the client until it disconnects. A new client first gets
// the latest collection when there is one.
func (h *eventsHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	flusher, ok := rw.(http.Flusher)
	if !ok {
		encodeError(r.Context(), errStreamingUnsupported, rw)
		return
	}

	logger := sallust.Get(r.Context())
	events := make(chan sseEvent, h.buffer)
	send := func(e sseEvent) {
		select {
		case events <- e:
		default:
			logger.Warn("event stream client is lagging, dropping event", zap.String("event", e.name))
		}
	}

	cancelNotify := h.notifier.Subscribe(func() {
		send(sseEvent{name: BuildCompleteEvent, data: struct{}{}})
	})
	defer cancelNotify()
	cancelRepos := h.repos.Subscribe(refresh.ListenerFunc(func(e refresh.Event) {
		if e.Err != nil {
			send(sseEvent{name: ErrorEvent, data: errorResponse{Message: e.Err.Error()}})
			return
		}
		send(sseEvent{name: RepositoriesEvent, data: e.Repositories})
	}))
	defer cancelRepos()

	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")
	rw.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(rw, ": keep-alive\n\n"); err != nil {
				return
			}
		case e := <-events:
			if err := writeEvent(rw, e); err != nil {
				logger.Debug("event stream closed", zap.Error(err))
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(rw http.ResponseWriter, e sseEvent) error {
	data, err := json.Marshal(e.data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(rw, "event: %s\ndata: %s\n\n", e.name, data)
	return err
}

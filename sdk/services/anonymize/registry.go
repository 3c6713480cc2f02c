// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"fmt"
	"sync"
	"time"

	"github.com/docanon/docanon-cli-sdk/sdk/utils"
)

// transition is the task state machine: pending -> processing -> completed|error.
// It never mutates t.
func transition(t Task, to Status, location string, cause error, now time.Time) (Task, error) {
	switch {
	case t.Status == StatusPending && to == StatusProcessing:
	case t.Status == StatusProcessing && to == StatusCompleted:
		if location == "" {
			return t, fmt.Errorf("%w: completed without result location", ErrInvalidTransition)
		}
	case t.Status == StatusProcessing && to == StatusError:
	default:
		return t, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}

	next := t
	next.Status = to
	next.UpdatedAt = now
	next.ResultLocation = ""
	next.Error = ""
	if to == StatusCompleted {
		next.ResultLocation = location
	}
	if to == StatusError && cause != nil {
		next.Error = cause.Error()
	}
	return next, nil
}

type entry struct {
	task Task
	file File
}

// Registry holds the tasks of one submission. A new submission gets a new
// Registry; a superseded one keeps receiving only its own late outcomes.
type Registry struct {
	batchID string
	notify  func(TaskEvent)

	mu      sync.Mutex
	order   []string
	entries map[string]*entry
}

func newRegistry(files []File, notify func(TaskEvent)) *Registry {
	now := time.Now()
	r := &Registry{
		batchID: utils.UUIDv4NoDash(),
		notify:  notify,
		order:   make([]string, 0, len(files)),
		entries: make(map[string]*entry, len(files)),
	}
	for _, f := range files {
		id := utils.UUIDv4NoDash()
		r.order = append(r.order, id)
		r.entries[id] = &entry{
			task: Task{ID: id, Name: f.Name, Status: StatusPending, UpdatedAt: now},
			file: f,
		}
	}
	return r
}

func (r *Registry) BatchID() string {
	return r.batchID
}

// IDs returns task keys in selection order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Task{}, false
	}
	return e.task, true
}

// ByName returns every task tracking a file with that name.
func (r *Registry) ByName(name string) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Task
	for _, id := range r.order {
		if e := r.entries[id]; e.task.Name == name {
			out = append(out, e.task)
		}
	}
	return out
}

func (r *Registry) Snapshot() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].task)
	}
	return out
}

// Settled reports whether every task reached a terminal state.
func (r *Registry) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if !e.task.Status.Terminal() {
			return false
		}
	}
	return true
}

func (r *Registry) file(id string) (File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return File{}, false
	}
	return e.file, true
}

// Transition replaces the entry of id with its next state and publishes the
// change. Notification happens outside the lock; transitions of one task come
// from a single goroutine, so per-task event order is preserved.
func (r *Registry) Transition(id string, to Status, location string, cause error) (Task, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	prev := e.task
	next, err := transition(prev, to, location, cause, time.Now())
	if err != nil {
		r.mu.Unlock()
		return prev, err
	}
	e.task = next
	r.mu.Unlock()

	if r.notify != nil {
		r.notify(TaskEvent{BatchID: r.batchID, Previous: prev.Status, Task: next})
	}
	return next, nil
}

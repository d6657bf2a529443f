// Package sse maintains the in-memory registry of live event-stream
// connections, grouped by project, and fans events out to them.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"projecthub.app/server/common/id"
)

// StreamWriter is the write side of one client connection. Satisfied by
// gin.ResponseWriter.
type StreamWriter interface {
	io.Writer
	Flush()
}

type conn struct {
	id        int64
	userID    int64
	projectID int64
	w         StreamWriter
}

// Registry tracks every open event-stream connection per project and owns
// all writes to them. All methods are safe for concurrent use; writes to a
// single connection are serialized by the registry lock.
type Registry struct {
	mu       sync.Mutex
	byProj   map[int64]map[int64]*conn
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewRegistry(heartbeatInterval time.Duration) *Registry {
	return &Registry{
		byProj:   make(map[int64]map[int64]*conn),
		interval: heartbeatInterval,
	}
}

// Add registers a connection for the project and returns its connection ID.
// IDs stay unique even when many clients connect in the same instant.
func (r *Registry) Add(projectID, userID int64, w StreamWriter) int64 {
	c := &conn{
		id:        id.New(),
		userID:    userID,
		projectID: projectID,
		w:         w,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.byProj[projectID]
	if !ok {
		conns = make(map[int64]*conn)
		r.byProj[projectID] = conns
	}
	conns[c.id] = c

	slog.Debug("event-stream connection added",
		"project_id", projectID, "connection_id", c.id, "user_id", userID)
	return c.id
}

// Remove drops the connection. Removing one that is already gone is a
// no-op. A project left with no connections is deleted from the map.
func (r *Registry) Remove(projectID, connID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(projectID, connID)
}

func (r *Registry) removeLocked(projectID, connID int64) {
	conns, ok := r.byProj[projectID]
	if !ok {
		return
	}
	if _, ok := conns[connID]; !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byProj, projectID)
	}
}

// Broadcast sends one named event to every connection subscribed to the
// project. Connections that fail the write are removed in a single batch
// after the sweep, so one dead client never drops frames for the rest.
func (r *Registry) Broadcast(projectID int64, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.byProj[projectID]
	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode event payload",
			"event", event, "project_id", projectID, "error", err)
		return
	}

	var dead []int64
	for _, c := range conns {
		if err := writeFrame(c.w, event, data); err != nil {
			dead = append(dead, c.id)
		}
	}
	for _, connID := range dead {
		r.removeLocked(projectID, connID)
	}
	if len(dead) > 0 {
		slog.Debug("reaped dead event-stream connections",
			"project_id", projectID, "count", len(dead))
	}
}

// Heartbeat writes a keepalive comment to every connection across all
// projects, reaping the ones that fail. With no connections it does
// nothing.
func (r *Registry) Heartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for projectID, conns := range r.byProj {
		var dead []int64
		for _, c := range conns {
			if err := writeComment(c.w, "heartbeat"); err != nil {
				dead = append(dead, c.id)
			}
		}
		for _, connID := range dead {
			r.removeLocked(projectID, connID)
		}
	}
}

// Send writes one named event to a single connection. Used for the initial
// frames of a freshly added connection.
func (r *Registry) Send(projectID, connID int64, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byProj[projectID]
	if !ok {
		return fmt.Errorf("connection %d not registered", connID)
	}
	c, ok := conns[connID]
	if !ok {
		return fmt.Errorf("connection %d not registered", connID)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding event payload: %w", err)
	}
	if err := writeFrame(c.w, event, data); err != nil {
		r.removeLocked(projectID, connID)
		return err
	}
	return nil
}

// Count returns the number of live connections for one project.
func (r *Registry) Count(projectID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byProj[projectID])
}

// Total returns the number of live connections across all projects.
func (r *Registry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, conns := range r.byProj {
		total += len(conns)
	}
	return total
}

// Start launches the heartbeat loop. It runs until Stop is called or the
// context is cancelled.
func (r *Registry) Start(ctx context.Context) {
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Heartbeat()
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop terminates the heartbeat loop and waits for it to exit. Connections
// stay registered; their handlers remove them on disconnect.
func (r *Registry) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
}

func writeFrame(w StreamWriter, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func writeComment(w StreamWriter, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	w.Flush()
	return nil
}

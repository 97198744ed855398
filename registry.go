/*
Copyright 2025 PayGrab Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package paygrab

import (
	"fmt"
	"sync"

	"github.com/segunla/paygrab/model"
)

// Role identifies which side of the marketplace a connection belongs to.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePayee    Role = "payee"
)

// connEventBuffer bounds how many undelivered events a single connection
// may hold before further pushes to it are dropped.
const connEventBuffer = 16

// Connection is one live push channel, keyed by (role, identity). A
// connection is ephemeral: it exists only while the subscriber holds its
// stream open, and losing one just means the subscriber falls back to
// polling.
type Connection struct {
	Role     Role
	Identity string
	Events   chan model.PushEvent
}

// ConnectionRegistry tracks live connections. All methods are safe for
// concurrent use. Event channels are never closed by the registry; a
// replaced or unregistered connection simply stops receiving pushes and
// its consumer exits when the client goes away.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[string]*Connection),
	}
}

func connKey(role Role, identity string) string {
	return fmt.Sprintf("%s:%s", role, identity)
}

// Register opens a channel for (role, identity). A new registration for
// the same key displaces the previous one; the newest connection wins.
func (r *ConnectionRegistry) Register(role Role, identity string) *Connection {
	conn := &Connection{
		Role:     role,
		Identity: identity,
		Events:   make(chan model.PushEvent, connEventBuffer),
	}

	r.mu.Lock()
	r.conns[connKey(role, identity)] = conn
	r.mu.Unlock()
	return conn
}

// Unregister removes the connection if it is still the current
// registration for its key. A connection displaced by a newer Register
// call leaves the newer one untouched.
func (r *ConnectionRegistry) Unregister(conn *Connection) {
	key := connKey(conn.Role, conn.Identity)

	r.mu.Lock()
	if current, ok := r.conns[key]; ok && current == conn {
		delete(r.conns, key)
	}
	r.mu.Unlock()
}

// Push delivers an event to the live connection for (role, identity), if
// any. A missing connection or a full buffer drops the event silently:
// pushes are best-effort signals backed by the pull-based order listing.
func (r *ConnectionRegistry) Push(role Role, identity string, event model.PushEvent) {
	r.mu.RLock()
	conn, ok := r.conns[connKey(role, identity)]
	r.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case conn.Events <- event:
	default:
	}
}

// Len reports the number of live connections.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

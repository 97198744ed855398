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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/segunla/paygrab/model"
)

func TestRegistryPushDelivers(t *testing.T) {
	registry := NewConnectionRegistry()
	conn := registry.Register(RolePayee, "pye_1")

	registry.Push(RolePayee, "pye_1", model.PushEvent{Event: model.EventNewOrder})

	select {
	case event := <-conn.Events:
		assert.Equal(t, model.EventNewOrder, event.Event)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestRegistryRolesAreSeparateKeys(t *testing.T) {
	registry := NewConnectionRegistry()
	payeeConn := registry.Register(RolePayee, "shared_id")
	customerConn := registry.Register(RoleCustomer, "shared_id")

	registry.Push(RolePayee, "shared_id", model.PushEvent{Event: model.EventNewOrder})

	assert.Len(t, payeeConn.Events, 1)
	assert.Len(t, customerConn.Events, 0)
	assert.Equal(t, 2, registry.Len())
}

func TestRegistryNewestConnectionWins(t *testing.T) {
	registry := NewConnectionRegistry()
	stale := registry.Register(RolePayee, "pye_1")
	fresh := registry.Register(RolePayee, "pye_1")

	registry.Push(RolePayee, "pye_1", model.PushEvent{Event: model.EventNewOrder})
	assert.Len(t, stale.Events, 0)
	assert.Len(t, fresh.Events, 1)

	// unregistering the displaced connection must not evict the fresh one
	registry.Unregister(stale)
	assert.Equal(t, 1, registry.Len())

	registry.Unregister(fresh)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryPushToMissingIdentity(t *testing.T) {
	registry := NewConnectionRegistry()
	assert.NotPanics(t, func() {
		registry.Push(RolePayee, "pye_ghost", model.PushEvent{Event: model.EventNewOrder})
	})
}

func TestRegistryFullBufferDropsInsteadOfBlocking(t *testing.T) {
	registry := NewConnectionRegistry()
	conn := registry.Register(RoleCustomer, "cust_1")

	for i := 0; i < connEventBuffer+5; i++ {
		registry.Push(RoleCustomer, "cust_1", model.PushEvent{Event: model.EventOrderGrabbed})
	}
	assert.Len(t, conn.Events, connEventBuffer)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewConnectionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("pye_%d", n)
			conn := registry.Register(RolePayee, identity)
			registry.Push(RolePayee, identity, model.PushEvent{Event: model.EventNewOrder})
			registry.Unregister(conn)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, registry.Len())
}

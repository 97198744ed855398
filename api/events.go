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
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/segunla/paygrab"
	"github.com/segunla/paygrab/model"
)

const heartbeatInterval = 25 * time.Second

// StreamEvents opens a server-sent-events stream for one subscriber.
// The role and id query parameters identify the connection: payees
// receive new-order notifications, customers receive grab and expiry
// updates for their submissions. Opening a second stream for the same
// identity displaces the first.
func (a Api) StreamEvents(c *gin.Context) {
	role := paygrab.Role(c.Query("role"))
	identity := c.Query("id")

	if role != paygrab.RoleCustomer && role != paygrab.RolePayee {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be customer or payee"})
		return
	}
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	registry := a.paygrab.Registry()
	conn := registry.Register(role, identity)
	defer registry.Unregister(conn)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent(model.EventConnected, gin.H{"role": role, "id": identity})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-conn.Events:
			c.SSEvent(event.Event, event.Data)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

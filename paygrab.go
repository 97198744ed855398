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
	"embed"
	"fmt"

	"github.com/segunla/paygrab/config"
	"github.com/segunla/paygrab/database"
	redis_db "github.com/segunla/paygrab/internal/redis-db"
	"github.com/redis/go-redis/v9"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// PayGrab is the dispatch service: it owns the claimable-order set, the
// live connection registry, and the expiry queue, and wires them to the
// durable order store. One instance is constructed at process start and
// shared by the API and the workers; there is no package-level mutable
// state.
type PayGrab struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	registry   *ConnectionRegistry
	claimable  *ClaimableSet
}

// NewPayGrab initializes the dispatch service with the provided database
// datasource. It fetches the configuration and initializes the redis
// client, expiry queue, connection registry, and claimable set.
func NewPayGrab(db database.IDataSource) (*PayGrab, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	newPayGrab := &PayGrab{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		registry:   NewConnectionRegistry(),
		claimable:  NewClaimableSet(),
	}
	return newPayGrab, nil
}

// Registry exposes the live connection registry to the transport layer.
func (l *PayGrab) Registry() *ConnectionRegistry {
	return l.registry
}

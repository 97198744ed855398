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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/segunla/paygrab"
	"github.com/segunla/paygrab/config"
	redis_db "github.com/segunla/paygrab/internal/redis-db"

	"github.com/hibiken/asynq"
)

// processOrderExpiry closes an order whose expiry window has passed. The
// expiry is a no-op if the order was grabbed in the meantime.
func (b *paygrabInstance) processOrderExpiry(ctx context.Context, t *asynq.Task) error {
	var orderID string
	if err := json.Unmarshal(t.Payload(), &orderID); err != nil {
		logrus.Error(err)
		return err
	}

	if err := b.paygrab.ExpireOrder(ctx, orderID); err != nil {
		return err
	}

	logrus.Printf(" [*] Order Expired %s", orderID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.ExpiryQueue] = 3
	queues[cfg.Queue.WebhookQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *paygrabInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.ExpiryQueue, b.processOrderExpiry)
	mux.HandleFunc(cfg.Queue.WebhookQueue, paygrab.ProcessWebhook)
}

// workerCommands returns the command that starts the queue workers
// consuming delayed order-expiry tasks.
func workerCommands(b *paygrabInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start paygrab workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()
			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal("Error initializing worker server:", err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("Error running worker server: %v", err)
			}
		},
	}

	return cmd
}

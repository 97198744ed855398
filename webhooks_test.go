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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/segunla/paygrab/config"
	"github.com/segunla/paygrab/model"
)

func TestSendWebhook(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
		Notification: config.Notification{
			Webhook: config.WebhookConfig{Url: "http://localhost:5001/webhook"},
		},
	})

	testData := NewWebhook{
		Event:   "order.created",
		Payload: &model.Order{OrderID: "ord_1", CustomerID: "cust_1"},
	}

	err = SendWebhook(testData)
	assert.NoError(t, err)

	// the task lands in redis immediately
	keys := mr.Keys()
	assert.NotEmpty(t, keys)
}

func TestSendWebhookSkipsWhenUnconfigured(t *testing.T) {
	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: "localhost:1"},
	})

	err := SendWebhook(NewWebhook{Event: "order.created"})
	assert.NoError(t, err)
}

func TestProcessWebhook(t *testing.T) {
	var received NewWebhook
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "secret", r.Header.Get("X-Signature"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"received": true}`))
	}))
	defer server.Close()

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: "localhost:6379"},
		Notification: config.Notification{
			Webhook: config.WebhookConfig{
				Url:     server.URL,
				Headers: map[string]string{"X-Signature": "secret"},
			},
		},
	})

	payload, err := json.Marshal(NewWebhook{Event: "order.grabbed", Payload: map[string]string{"order_id": "ord_1"}})
	assert.NoError(t, err)

	task := asynq.NewTask("webhook:queue", payload)
	err = ProcessWebhook(context.Background(), task)
	assert.NoError(t, err)
	assert.Equal(t, "order.grabbed", received.Event)
}

func TestGetEventFromStatus(t *testing.T) {
	assert.Equal(t, "order.created", getEventFromStatus(StatusPending))
	assert.Equal(t, "order.grabbed", getEventFromStatus(StatusGrabbed))
	assert.Equal(t, "order.completed", getEventFromStatus(StatusCompleted))
	assert.Equal(t, "order.expired", getEventFromStatus(StatusExpired))
	assert.Equal(t, "order.cancelled", getEventFromStatus(StatusCancelled))
	assert.Equal(t, "order.unknown", getEventFromStatus("weird"))
}

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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5401"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"PAYGRAB_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"PAYGRAB_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"PAYGRAB_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"PAYGRAB_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"PAYGRAB_REDIS_DNS"`
}

type QueueConfig struct {
	ExpiryQueue  string `json:"expiry_queue" envconfig:"PAYGRAB_QUEUE_EXPIRY_QUEUE"`
	WebhookQueue string `json:"webhook_queue" envconfig:"PAYGRAB_QUEUE_WEBHOOK_QUEUE"`
}

type WebhookConfig struct {
	Url     string            `json:"url" envconfig:"PAYGRAB_WEBHOOK_URL"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Webhook WebhookConfig `json:"webhook"`
}

// DispatchConfig tunes the ranking delays and the order lifetime. Delay
// values are seconds; priority weights are fixed in the ranker and not
// configurable.
type DispatchConfig struct {
	LocalityDelaySec int    `json:"locality_delay_sec" envconfig:"PAYGRAB_DISPATCH_LOCALITY_DELAY_SEC"`
	FallbackDelaySec int    `json:"fallback_delay_sec" envconfig:"PAYGRAB_DISPATCH_FALLBACK_DELAY_SEC"`
	OrderTTLSec      int    `json:"order_ttl_sec" envconfig:"PAYGRAB_DISPATCH_ORDER_TTL_SEC"`
	TimeZone         string `json:"time_zone" envconfig:"PAYGRAB_DISPATCH_TIME_ZONE"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"PAYGRAB_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Queue        QueueConfig      `json:"queue"`
	Dispatch     DispatchConfig   `json:"dispatch"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("paygrab", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called paygrab.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "PayGrab Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Queue.ExpiryQueue == "" {
		cnf.Queue.ExpiryQueue = "order:expiry"
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "webhook:queue"
	}

	if cnf.Dispatch.LocalityDelaySec == 0 {
		cnf.Dispatch.LocalityDelaySec = 10
	}
	if cnf.Dispatch.FallbackDelaySec == 0 {
		cnf.Dispatch.FallbackDelaySec = 30
	}
	if cnf.Dispatch.OrderTTLSec == 0 {
		cnf.Dispatch.OrderTTLSec = 60
	}
	if cnf.Dispatch.TimeZone == "" {
		cnf.Dispatch.TimeZone = "Local"
	}
	if _, err := time.LoadLocation(cnf.Dispatch.TimeZone); err != nil {
		return errors.New("dispatch time zone is not a valid IANA zone name")
	}

	return nil
}

// Location resolves the configured calendar-day boundary zone. Every
// quota computation in the system uses this one zone.
func (d DispatchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Queue.ExpiryQueue == "" {
		mockConfig.Queue.ExpiryQueue = "order:expiry"
	}
	if mockConfig.Queue.WebhookQueue == "" {
		mockConfig.Queue.WebhookQueue = "webhook:queue"
	}
	if mockConfig.Dispatch.LocalityDelaySec == 0 {
		mockConfig.Dispatch.LocalityDelaySec = 10
	}
	if mockConfig.Dispatch.FallbackDelaySec == 0 {
		mockConfig.Dispatch.FallbackDelaySec = 30
	}
	if mockConfig.Dispatch.OrderTTLSec == 0 {
		mockConfig.Dispatch.OrderTTLSec = 60
	}
	if mockConfig.Dispatch.TimeZone == "" {
		mockConfig.Dispatch.TimeZone = "Local"
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

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
	"log"

	"github.com/gin-gonic/gin"
	"github.com/segunla/paygrab/api"
	"github.com/segunla/paygrab/config"
	"github.com/spf13/cobra"
)

func initializeRouter(b *paygrabInstance) *gin.Engine {
	return api.NewAPI(b.paygrab).Router()
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

// serverCommands returns the command that starts the HTTP server. Before
// listening it restores the claimable set from still-pending orders so a
// restart never strands open orders.
func serverCommands(b *paygrabInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start paygrab server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			router := initializeRouter(b)

			cfg, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}

			if err := b.paygrab.RecoverClaimableOrders(ctx); err != nil {
				log.Printf("Error restoring claimable orders: %v", err)
			}

			if err := startServer(router, cfg.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}

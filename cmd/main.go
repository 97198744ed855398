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
	"fmt"
	"log"
	"os"

	"github.com/segunla/paygrab"
	"github.com/segunla/paygrab/config"
	"github.com/segunla/paygrab/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// PayGrabCLI wraps the root cobra command.
type PayGrabCLI struct {
	cmd *cobra.Command
}

// paygrabInstance carries the service and its configuration into the
// subcommands after preRun has initialized them.
type paygrabInstance struct {
	paygrab *paygrab.PayGrab
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *paygrabInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("paygrab.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newPayGrab, err := setupPayGrab(cnf)
		if err != nil {
			log.Fatal(err)
		}

		app.paygrab = newPayGrab
		app.cnf = cnf

		return nil
	}
}

func setupPayGrab(cfg *config.Configuration) (*paygrab.PayGrab, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newPayGrab, err := paygrab.NewPayGrab(db)
	if err != nil {
		return nil, fmt.Errorf("error creating paygrab: %v", err)
	}
	return newPayGrab, nil
}

func NewCLI() *PayGrabCLI {
	var configFile string
	b := &paygrabInstance{}

	var rootCmd = &cobra.Command{
		Use:   "paygrab",
		Short: "Loan repayment order dispatch server",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./paygrab.json", "Configuration file for paygrab")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))
	rootCmd.AddCommand(configCommands())

	return &PayGrabCLI{cmd: rootCmd}
}

func (w PayGrabCLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}

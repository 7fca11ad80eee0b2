/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/planshare"
	"github.com/tomoncle/planshare/config"
	"github.com/tomoncle/planshare/utils"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile  string
	envFile     string
	environment string
	logFormat   string
}

func (g *globalFlags) settings() (*config.Settings, error) {
	v, err := config.Load(config.LoaderOptions{
		ConfigFile:  g.configFile,
		EnvFile:     g.envFile,
		Environment: g.environment,
	})
	if err != nil {
		return nil, err
	}
	return config.NewResolver(v).Resolve()
}

func (g *globalFlags) infrastructure() (*planshare.Infrastructure, error) {
	s, err := g.settings()
	if err != nil {
		return nil, err
	}
	return planshare.AddInfrastructure(s)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "planshare",
		Short:         "PlanShare infrastructure tooling",
		Long:          "Bootstraps the PlanShare database, applies schema migrations and inspects configuration.",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to the appsettings file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to a .env file")
	root.PersistentFlags().StringVar(&flags.environment, "environment", "", "Environment overlay, appsettings.<environment>.yaml")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Console log format, text or json")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if flags.logFormat != "" {
			utils.ConfigureConsoleLogFormat(flags.logFormat)
		}
	}

	root.AddCommand(newMigrateCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

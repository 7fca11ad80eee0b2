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
	"errors"

	"github.com/spf13/cobra"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := flags.infrastructure()
			if err != nil {
				return err
			}
			defer infra.Close()
			_ = infra.Provider.Connect(cmd.Context())
			status := infra.Provider.HealthCheck(cmd.Context())
			if err := writeYAML(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.Healthy {
				return errors.New("database is unhealthy")
			}
			return nil
		},
	}
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.settings()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), s.Redacted())
		},
	}
}

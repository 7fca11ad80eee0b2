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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Ensure the database exists and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := flags.infrastructure()
			if err != nil {
				return err
			}
			defer infra.Close()
			if err := infra.Startup(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
	cmd.AddCommand(newMigrateListCmd(flags))
	return cmd
}

func newMigrateListCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List migrations and whether they have been applied",
		Long:  "List migrations and whether they have been applied. The database is only read; a missing VersionInfo table lists every migration as pending.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unsupported output %q, use text or yaml", output)
			}
			infra, err := flags.infrastructure()
			if err != nil {
				return err
			}
			defer infra.Close()
			if err := infra.Provider.Connect(cmd.Context()); err != nil {
				return err
			}
			statuses, err := infra.Migrations.MigrationStatuses(cmd.Context())
			if err != nil {
				return err
			}
			if output == "yaml" {
				return writeYAML(cmd.OutOrStdout(), statuses)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED ON\tDESCRIPTION")
			for _, s := range statuses {
				state, on := "pending", "-"
				if s.Applied {
					state = "applied"
					on = s.AppliedOn.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, state, on, s.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")
	return cmd
}

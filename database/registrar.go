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

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/planshare/types"
)

// RunnerConfig configures NewMigrationRunner.
type RunnerConfig struct {
	Type     types.DatabaseType
	InMemory bool
	// Registry defaults to DefaultRegistry.
	Registry *MigrationRegistry
	Logger   Logger
}

// NewMigrationRunner binds db to the dialect plugin of cfg.Type and to every
// migration in the registry. An unmatched type fails with ErrUnsetDialect.
func NewMigrationRunner(db *bun.DB, cfg RunnerConfig) (*MigrationManager, error) {
	backend, ok := lookupProvider(cfg.Type, cfg.InMemory)
	if !ok || backend.plugin == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsetDialect, cfg.Type)
	}
	if db == nil {
		return nil, ErrNotConnected
	}
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	return newMigrationManager(db, backend.plugin, registry.Migrations(), cfg.Logger), nil
}

// Migrate lists the known migrations, then applies the pending ones.
func Migrate(ctx context.Context, runner *MigrationManager) error {
	if _, err := runner.ListMigrations(ctx); err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if err := runner.MigrateUp(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

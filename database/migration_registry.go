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
	"sort"
	"sync"

	"github.com/uptrace/bun"
)

// MigrationFunc applies one forward-only schema change inside tx.
type MigrationFunc func(ctx context.Context, tx bun.Tx, dialect *DialectPlugin) error

// Migration is a versioned schema change. There is no down step.
type Migration struct {
	Version     int64
	Description string
	Up          MigrationFunc
}

// MigrationRegistry holds migrations keyed by unique version.
type MigrationRegistry struct {
	mu         sync.RWMutex
	migrations map[int64]Migration
}

func NewMigrationRegistry() *MigrationRegistry {
	return &MigrationRegistry{migrations: make(map[int64]Migration)}
}

var defaultRegistry = NewMigrationRegistry()

// DefaultRegistry is filled by the init functions of migration packages.
func DefaultRegistry() *MigrationRegistry { return defaultRegistry }

// Register adds m. Versions must be positive and unique.
func (r *MigrationRegistry) Register(m Migration) error {
	if m.Version <= 0 {
		return fmt.Errorf("migration version must be positive, got %d", m.Version)
	}
	if m.Up == nil {
		return fmt.Errorf("migration %d has no up step", m.Version)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.migrations[m.Version]; ok {
		return fmt.Errorf("migration version %d registered twice", m.Version)
	}
	r.migrations[m.Version] = m
	return nil
}

// MustRegister is Register for init functions.
func (r *MigrationRegistry) MustRegister(m Migration) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Migrations returns every migration in ascending version order.
func (r *MigrationRegistry) Migrations() []Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result
}

// RegisterMigration adds m to the default registry.
func RegisterMigration(m Migration) {
	defaultRegistry.MustRegister(m)
}

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
	"os"
	"time"

	"github.com/uptrace/bun"
)

// VersionInfo is one row of the applied-version ledger.
type VersionInfo struct {
	bun.BaseModel `bun:"table:VersionInfo,alias:vi"`

	Version     int64     `bun:"Version,pk" yaml:"version"`
	AppliedOn   time.Time `bun:"AppliedOn" yaml:"applied_on"`
	Description string    `bun:"Description" yaml:"description"`
}

// MigrationStatus reports whether a registered migration has been applied.
type MigrationStatus struct {
	Version     int64      `yaml:"version" json:"version"`
	Description string     `yaml:"description" json:"description"`
	Applied     bool       `yaml:"applied" json:"applied"`
	AppliedOn   *time.Time `yaml:"applied_on,omitempty" json:"applied_on,omitempty"`
}

// MigrationManager applies registered migrations against one database and
// records them in VersionInfo.
type MigrationManager struct {
	db         *bun.DB
	dialect    *DialectPlugin
	migrations []Migration
	logger     Logger
}

func newMigrationManager(db *bun.DB, dialect *DialectPlugin, migrations []Migration, logger Logger) *MigrationManager {
	return &MigrationManager{
		db:         db,
		dialect:    dialect,
		migrations: migrations,
		logger:     loggerOrDefault(logger),
	}
}

// Dialect returns the plugin the runner was configured with.
func (mm *MigrationManager) Dialect() *DialectPlugin { return mm.dialect }

func (mm *MigrationManager) createLedger(ctx context.Context) error {
	if mm.db == nil {
		return ErrNotConnected
	}
	if _, err := mm.db.ExecContext(ctx, mm.dialect.CreateLedgerSQL()); err != nil {
		return fmt.Errorf("failed to create VersionInfo table: %w", err)
	}
	return nil
}

// AppliedMigrations returns ledger rows keyed by version, creating the
// ledger table first.
func (mm *MigrationManager) AppliedMigrations(ctx context.Context) (map[int64]VersionInfo, error) {
	if err := mm.createLedger(ctx); err != nil {
		return nil, err
	}
	return mm.readLedger(ctx)
}

func (mm *MigrationManager) readLedger(ctx context.Context) (map[int64]VersionInfo, error) {
	if mm.db == nil {
		return nil, ErrNotConnected
	}
	var rows []VersionInfo
	if err := mm.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to read VersionInfo: %w", err)
	}
	applied := make(map[int64]VersionInfo, len(rows))
	for _, r := range rows {
		applied[r.Version] = r
	}
	return applied, nil
}

// ListMigrations logs and returns every registered migration with its
// applied state, in ascending version order. The ledger table is created
// when missing.
func (mm *MigrationManager) ListMigrations(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := mm.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	return mm.statuses(applied), nil
}

// MigrationStatuses is ListMigrations without DDL: a missing ledger table
// reports every migration as pending.
func (mm *MigrationManager) MigrationStatuses(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := mm.readLedger(ctx)
	if err != nil {
		if is, code := IsSqlError(err); !is || code != NoTableErr {
			return nil, err
		}
		applied = map[int64]VersionInfo{}
	}
	return mm.statuses(applied), nil
}

func (mm *MigrationManager) statuses(applied map[int64]VersionInfo) []MigrationStatus {
	statuses := make([]MigrationStatus, 0, len(mm.migrations))
	for _, m := range mm.migrations {
		s := MigrationStatus{Version: m.Version, Description: m.Description}
		if row, ok := applied[m.Version]; ok {
			s.Applied = true
			on := row.AppliedOn
			s.AppliedOn = &on
		}
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		mm.logger.Info("Migration", "version", m.Version, "description", m.Description, "state", state)
		statuses = append(statuses, s)
	}
	return statuses
}

// MigrateUp applies every pending migration in ascending version order. Each
// migration and its ledger row share one transaction. The first failure
// stops the run.
func (mm *MigrationManager) MigrateUp(ctx context.Context) error {
	if _, ok := os.LookupEnv("PLANSHARE_SQL_TRACE_MIGRATION"); !ok {
		EnableQuerySilent(true)
		defer EnableQuerySilent(false)
	}

	applied, err := mm.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range mm.migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if err := mm.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		count++
	}
	mm.logger.Info("Database migrations completed", "applied", count)
	return nil
}

func (mm *MigrationManager) apply(ctx context.Context, m Migration) error {
	start := time.Now()
	err := mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.Up(ctx, tx, mm.dialect); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&VersionInfo{
			Version:     m.Version,
			AppliedOn:   time.Now().UTC(),
			Description: m.Description,
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration applied", "version", m.Version, "description", m.Description,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// ExecStatements runs DDL statements in order inside tx.
func ExecStatements(ctx context.Context, tx bun.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}

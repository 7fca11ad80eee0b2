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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/planshare/types"
)

func openMemoryProvider(t *testing.T, name string) *Provider {
	t.Helper()
	p, err := SelectProvider(&Config{
		Type:         types.DatabaseTypeMySQL,
		InMemory:     true,
		InMemoryName: name,
	}, &recordingLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Connect(context.Background()))
	return p
}

func tableMigration(version int64, table Table, calls *[]int64) Migration {
	return Migration{
		Version:     version,
		Description: "create " + table.Name,
		Up: func(ctx context.Context, tx bun.Tx, dialect *DialectPlugin) error {
			*calls = append(*calls, version)
			return ExecStatements(ctx, tx, dialect.CreateTableSQL(table, false))
		},
	}
}

func TestMigrateUpAppliesInOrderOnce(t *testing.T) {
	ctx := context.Background()
	p := openMemoryProvider(t, "migrate_up_order")

	var calls []int64
	registry := NewMigrationRegistry()
	registry.MustRegister(tableMigration(2, Table{Name: "Second", Columns: []Column{{Name: "Id", Kind: ColumnInt64, PrimaryKey: true}}}, &calls))
	registry.MustRegister(tableMigration(1, accountsTable, &calls))

	runner, err := NewMigrationRunner(p.DB(), RunnerConfig{InMemory: true, Registry: registry, Logger: &recordingLogger{}})
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, runner.Dialect().Name())

	statuses, err := runner.ListMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, int64(1), statuses[0].Version)
	assert.False(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	require.NoError(t, Migrate(ctx, runner))
	assert.Equal(t, []int64{1, 2}, calls)

	require.NoError(t, Migrate(ctx, runner))
	assert.Equal(t, []int64{1, 2}, calls, "second run must not re-apply")

	statuses, err = runner.ListMigrations(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		require.NotNil(t, s.AppliedOn)
	}

	count, err := p.DB().NewSelect().Model((*VersionInfo)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrateUpStopsAtFailure(t *testing.T) {
	ctx := context.Background()
	p := openMemoryProvider(t, "migrate_up_failure")
	boom := errors.New("boom")

	var calls []int64
	registry := NewMigrationRegistry()
	registry.MustRegister(tableMigration(1, accountsTable, &calls))
	registry.MustRegister(Migration{Version: 2, Description: "broken", Up: func(ctx context.Context, tx bun.Tx, _ *DialectPlugin) error {
		if _, err := tx.ExecContext(ctx, `CREATE TABLE "Partial" ("Id" BIGINT)`); err != nil {
			return err
		}
		return boom
	}})
	registry.MustRegister(tableMigration(3, Table{Name: "Third", Columns: []Column{{Name: "Id", Kind: ColumnInt64, PrimaryKey: true}}}, &calls))

	runner, err := NewMigrationRunner(p.DB(), RunnerConfig{InMemory: true, Registry: registry, Logger: &recordingLogger{}})
	require.NoError(t, err)

	err = Migrate(ctx, runner)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{1}, calls)

	statuses, err := runner.ListMigrations(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
	assert.False(t, statuses[2].Applied)

	_, err = p.DB().ExecContext(ctx, `SELECT * FROM "Partial"`)
	assert.Error(t, err, "failed migration must be rolled back")
}

func TestNewMigrationRunnerDialects(t *testing.T) {
	p := openMemoryProvider(t, "runner_dialects")
	tests := map[string]struct {
		dbType types.DatabaseType
		want   string
	}{
		"mysql":     {types.DatabaseTypeMySQL, DialectMySQL5},
		"sqlserver": {types.DatabaseTypeSQLServer, DialectSQLServer},
		"postgres":  {types.DatabaseTypePostgreSQL, DialectPostgres},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runner, err := NewMigrationRunner(p.DB(), RunnerConfig{Type: tt.dbType})
			require.NoError(t, err)
			assert.Equal(t, tt.want, runner.Dialect().Name())
		})
	}

	_, err := NewMigrationRunner(p.DB(), RunnerConfig{Type: types.DatabaseTypeUnspecified})
	assert.ErrorIs(t, err, ErrUnsetDialect)

	_, err = NewMigrationRunner(nil, RunnerConfig{Type: types.DatabaseTypeMySQL})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMigrationStatusesDoesNotCreateLedger(t *testing.T) {
	ctx := context.Background()
	p := openMemoryProvider(t, "statuses_read_only")

	var calls []int64
	registry := NewMigrationRegistry()
	registry.MustRegister(tableMigration(1, accountsTable, &calls))
	runner, err := NewMigrationRunner(p.DB(), RunnerConfig{InMemory: true, Registry: registry, Logger: &recordingLogger{}})
	require.NoError(t, err)

	statuses, err := runner.MigrationStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)

	_, err = p.DB().ExecContext(ctx, `SELECT * FROM "VersionInfo"`)
	require.Error(t, err)
	_, code := IsSqlError(err)
	assert.Equal(t, NoTableErr, code)

	require.NoError(t, runner.MigrateUp(ctx))
	statuses, err = runner.MigrationStatuses(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.Equal(t, []int64{1}, calls)
}

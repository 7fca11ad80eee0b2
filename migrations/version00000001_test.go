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

package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/planshare/database"
	"github.com/tomoncle/planshare/types"
)

func TestUsersTableDDL(t *testing.T) {
	tests := []struct {
		dbType types.DatabaseType
		table  string
		index  string
	}{
		{
			types.DatabaseTypeMySQL,
			"CREATE TABLE `Users` (`Id` CHAR(36) NOT NULL, `Name` VARCHAR(100) NOT NULL, `Email` VARCHAR(255) NOT NULL, `Password` VARCHAR(2000) NOT NULL, `Active` TINYINT(1) NOT NULL DEFAULT 1, `CreatedOn` DATETIME NOT NULL, CONSTRAINT `PK_Users` PRIMARY KEY (`Id`))",
			"CREATE UNIQUE INDEX `IX_Users_Email` ON `Users` (`Email`)",
		},
		{
			types.DatabaseTypeSQLServer,
			"CREATE TABLE [Users] ([Id] UNIQUEIDENTIFIER NOT NULL, [Name] NVARCHAR(100) NOT NULL, [Email] NVARCHAR(255) NOT NULL, [Password] NVARCHAR(2000) NOT NULL, [Active] BIT NOT NULL DEFAULT 1, [CreatedOn] DATETIME NOT NULL, CONSTRAINT [PK_Users] PRIMARY KEY ([Id]))",
			"CREATE UNIQUE INDEX [IX_Users_Email] ON [Users] ([Email])",
		},
		{
			types.DatabaseTypePostgreSQL,
			`CREATE TABLE "Users" ("Id" UUID NOT NULL, "Name" VARCHAR(100) NOT NULL, "Email" VARCHAR(255) NOT NULL, "Password" VARCHAR(2000) NOT NULL, "Active" BOOLEAN NOT NULL DEFAULT true, "CreatedOn" TIMESTAMP NOT NULL, CONSTRAINT "PK_Users" PRIMARY KEY ("Id"))`,
			`CREATE UNIQUE INDEX "IX_Users_Email" ON "Users" ("Email")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.dbType.String(), func(t *testing.T) {
			dialect, ok := database.DialectFor(tt.dbType)
			require.True(t, ok)
			assert.Equal(t, []string{tt.table, tt.index}, dialect.CreateTableSQL(UsersTable, false))
		})
	}
}

func TestVersion00000001IsRegistered(t *testing.T) {
	all := database.DefaultRegistry().Migrations()
	require.NotEmpty(t, all)
	assert.Equal(t, VersionUsersTable, all[0].Version)
	assert.Equal(t, "Create table to save the user's information", all[0].Description)
}

func TestUsersMigrationInMemory(t *testing.T) {
	ctx := context.Background()
	p, err := database.SelectProvider(&database.Config{
		Type:         types.DatabaseTypeMySQL,
		InMemory:     true,
		InMemoryName: "migrations_users",
	}, nil)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Connect(ctx))

	runner, err := database.NewMigrationRunner(p.DB(), database.RunnerConfig{InMemory: true})
	require.NoError(t, err)

	statuses, err := runner.ListMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)

	require.NoError(t, runner.MigrateUp(ctx))
	require.NoError(t, runner.MigrateUp(ctx))

	statuses, err = runner.ListMigrations(ctx)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)

	insert := `INSERT INTO "Users" ("Id", "Name", "Email", "Password", "CreatedOn") VALUES (?, ?, ?, ?, ?)`
	first := uuid.NewString()
	_, err = p.DB().ExecContext(ctx, insert, first, "Ada", "ada@example.com", "hash", time.Now().UTC())
	require.NoError(t, err)

	var active bool
	require.NoError(t, p.DB().QueryRowContext(ctx, `SELECT "Active" FROM "Users" WHERE "Id" = ?`, first).Scan(&active))
	assert.True(t, active)

	_, err = p.DB().ExecContext(ctx, insert, uuid.NewString(), "Other", "ada@example.com", "hash", time.Now().UTC())
	require.Error(t, err)
	is, code := database.IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, database.DuplicateKeyErr, code)

	_, err = p.DB().ExecContext(ctx, insert, first, "Copy", "copy@example.com", "hash", time.Now().UTC())
	require.Error(t, err, "Id must be unique")
	_, code = database.IsSqlError(err)
	assert.Equal(t, database.DuplicateKeyErr, code)

	_, err = p.DB().ExecContext(ctx, insert, nil, "Nobody", "nobody@example.com", "hash", time.Now().UTC())
	require.Error(t, err, "Id must not be null")
	_, code = database.IsSqlError(err)
	assert.Equal(t, database.NotNullViolationErr, code)

	var count int
	require.NoError(t, p.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM "Users"`).Scan(&count))
	assert.Equal(t, 1, count)
}

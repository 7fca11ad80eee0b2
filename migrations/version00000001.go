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

	"github.com/uptrace/bun"

	"github.com/tomoncle/planshare/database"
)

// Versions are unique and only ever increase.
const (
	VersionUsersTable int64 = 1
)

// UsersTable is the Users table created at VersionUsersTable.
var UsersTable = database.Table{
	Name: "Users",
	Columns: []database.Column{
		{Name: "Id", Kind: database.ColumnGuid, PrimaryKey: true},
		{Name: "Name", Kind: database.ColumnString, Size: 100},
		{Name: "Email", Kind: database.ColumnString, Size: 255, Unique: true},
		{Name: "Password", Kind: database.ColumnString, Size: 2000},
		{Name: "Active", Kind: database.ColumnBoolean, Default: true},
		{Name: "CreatedOn", Kind: database.ColumnDateTime},
	},
}

// Version00000001 creates the table holding user information.
var Version00000001 = database.Migration{
	Version:     VersionUsersTable,
	Description: "Create table to save the user's information",
	Up: func(ctx context.Context, tx bun.Tx, dialect *database.DialectPlugin) error {
		return database.ExecStatements(ctx, tx, dialect.CreateTableSQL(UsersTable, false))
	},
}

func init() {
	database.RegisterMigration(Version00000001)
}

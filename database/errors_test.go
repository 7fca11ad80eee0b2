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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		want SQLError
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, DuplicateKeyErr},
		{"mysql unknown database", &mysql.MySQLError{Number: 1049}, true, NoDatabaseErr},
		{"mysql other", &mysql.MySQLError{Number: 9999}, true, UnknownErr},
		{"sqlserver unique index", mssql.Error{Number: 2601, Message: "Cannot insert duplicate key row"}, true, DuplicateKeyErr},
		{"sqlserver primary key", fmt.Errorf("insert: %w", mssql.Error{Number: 2627}), true, DuplicateKeyErr},
		{"sqlserver not null", mssql.Error{Number: 515}, true, NotNullViolationErr},
		{"postgres unique", &pq.Error{Code: "23505"}, true, DuplicateKeyErr},
		{"postgres missing database", &pq.Error{Code: "3D000"}, true, NoDatabaseErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: Users.Email (2067)"), true, DuplicateKeyErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: Users.Name"), true, NotNullViolationErr},
		{"sqlite missing table", errors.New("no such table: Users"), true, NoTableErr},
		{"sqlstate in message", errors.New("ERROR: boom (SQLSTATE 23503)"), true, ForeignKeyViolationErr},
		{"not sql", errors.New("connection refused"), false, UnknownErr},
		{"nil", nil, false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, code := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestErrUnsetDialectWrapsUnsupported(t *testing.T) {
	assert.ErrorIs(t, ErrUnsetDialect, ErrUnsupportedDatabaseType)
	assert.False(t, errors.Is(ErrUnsupportedDatabaseType, ErrUnsetDialect))
}

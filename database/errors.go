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
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
)

var (
	// ErrUnsupportedDatabaseType is returned when a DatabaseType has no
	// provider entry.
	ErrUnsupportedDatabaseType = errors.New("unsupported database type")

	// ErrUnsetDialect is returned by the migration registrar when no dialect
	// plugin matches. It wraps ErrUnsupportedDatabaseType.
	ErrUnsetDialect = fmt.Errorf("%w: migration dialect is unset", ErrUnsupportedDatabaseType)

	// ErrMissingDatabaseName is returned when a connection string names no
	// database to bootstrap.
	ErrMissingDatabaseName = errors.New("connection string does not name a database")

	ErrNotConnected = errors.New("database not connected")
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	NoDatabaseErr
)

// IsSqlError classifies driver errors from MySQL, SQL Server, PostgreSQL and
// SQLite. is is false when err does not look like a SQL error at all.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return true, mysqlErrorCode(mysqlErr.Number)
	}
	var mssqlErr mssql.Error
	if errors.As(err, &mssqlErr) {
		return true, sqlServerErrorCode(mssqlErr.Number)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if code, ok := sqlStateCode(string(pqErr.Code)); ok {
			return true, code
		}
		return true, UnknownErr
	}
	return classifyMessage(strings.ToLower(err.Error()))
}

func mysqlErrorCode(number uint16) SQLError {
	switch number {
	case 1091:
		return NoIndexErr
	case 1054:
		return NoColumnErr
	case 1061:
		return ExistIndexErr
	case 1060:
		return ExistColumnErr
	case 1146:
		return NoTableErr
	case 1050:
		return ExistTableErr
	case 1062:
		return DuplicateKeyErr
	case 1048, 1364:
		return NotNullViolationErr
	case 1216, 1217, 1451, 1452:
		return ForeignKeyViolationErr
	case 3819:
		return CheckConstraintViolationErr
	case 1265, 1406:
		return DataTruncatedErr
	case 1049:
		return NoDatabaseErr
	default:
		return UnknownErr
	}
}

func sqlServerErrorCode(number int32) SQLError {
	switch number {
	case 2627, 2601:
		return DuplicateKeyErr
	case 515:
		return NotNullViolationErr
	case 547:
		return ForeignKeyViolationErr
	case 207:
		return NoColumnErr
	case 208:
		return NoTableErr
	case 2714:
		return ExistTableErr
	case 1913:
		return ExistIndexErr
	case 2628, 8152:
		return DataTruncatedErr
	case 245:
		return InvalidTypeCastErr
	case 4060, 911:
		return NoDatabaseErr
	default:
		return UnknownErr
	}
}

func sqlStateCode(state string) (SQLError, bool) {
	switch strings.ToUpper(state) {
	case "42703":
		return NoColumnErr, true
	case "42704":
		return NoIndexErr, true
	case "42P01":
		return NoTableErr, true
	case "42P07":
		return ExistTableErr, true
	case "23505":
		return DuplicateKeyErr, true
	case "23502":
		return NotNullViolationErr, true
	case "23503":
		return ForeignKeyViolationErr, true
	case "23514":
		return CheckConstraintViolationErr, true
	case "22001":
		return DataTruncatedErr, true
	case "42804":
		return InvalidTypeCastErr, true
	case "3D000":
		return NoDatabaseErr, true
	default:
		return UnknownErr, false
	}
}

func classifyMessage(s string) (bool, SQLError) {
	switch {
	case strings.Contains(s, "no rows in result set"):
		return true, NoRowsErr
	case strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return true, NoColumnErr
	case strings.Contains(s, "no such index"),
		strings.Contains(s, "does not exist") && strings.Contains(s, "index"):
		return true, NoIndexErr
	case strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return true, NoTableErr
	case strings.Contains(s, "already exists") && strings.Contains(s, "index"):
		return true, ExistIndexErr
	case strings.Contains(s, "already exists") && (strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return true, ExistTableErr
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"):
		return true, NotNullViolationErr
	case strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "check constraint"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"):
		return true, DataTruncatedErr
	case strings.Contains(s, "datatype mismatch"):
		return true, InvalidTypeCastErr
	}
	if i := strings.Index(s, "sqlstate "); i >= 0 && len(s) >= i+14 {
		if code, ok := sqlStateCode(s[i+9 : i+14]); ok {
			return true, code
		}
	}
	return false, UnknownErr
}

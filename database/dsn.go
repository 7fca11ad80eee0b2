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
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// mysqlServerDSN returns the database named by dsn and a DSN for the same
// server with the database removed.
func mysqlServerDSN(dsn string) (*mysql.Config, string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse mysql connection string: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return nil, "", ErrMissingDatabaseName
	}
	cfg.DBName = ""
	return cfg, name, nil
}

// sqlServerServerConfig returns the catalog named by dsn and a config for the
// same server with the catalog removed.
func sqlServerServerConfig(dsn string) (msdsn.Config, string, error) {
	cfg, err := msdsn.Parse(dsn)
	if err != nil {
		return msdsn.Config{}, "", fmt.Errorf("failed to parse sqlserver connection string: %w", err)
	}
	name := cfg.Database
	if name == "" {
		return msdsn.Config{}, "", ErrMissingDatabaseName
	}
	cfg.Database = ""
	delete(cfg.Parameters, msdsn.Database)
	return cfg, name, nil
}

// normalizeMySQLDSN turns on parseTime so DATETIME columns scan into
// time.Time.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql connection string: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func sqliteMemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

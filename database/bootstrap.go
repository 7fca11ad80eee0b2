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
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/tomoncle/planshare/types"
)

// serverCatalog is a short-lived server-level connection used to inspect and
// create databases.
type serverCatalog interface {
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
	Close() error
}

type catalogOpener func(dt types.DatabaseType, connector driver.Connector) serverCatalog

// Bootstrapper makes sure the target database exists before migrations run.
type Bootstrapper struct {
	logger Logger
	open   catalogOpener
}

func NewBootstrapper(logger Logger) *Bootstrapper {
	return &Bootstrapper{logger: loggerOrDefault(logger), open: openSQLCatalog}
}

// EnsureDatabase runs the bootstrap strategy of dt. Administrative
// connections are closed before it returns. Nothing is retried.
func (b *Bootstrapper) EnsureDatabase(ctx context.Context, dt types.DatabaseType, connectionString string) error {
	backend, ok := lookupProvider(dt, false)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDatabaseType, dt)
	}
	if err := backend.bootstrap(ctx, b, connectionString); err != nil {
		return fmt.Errorf("failed to bootstrap %s database: %w", backend.name, err)
	}
	return nil
}

func bootstrapSQLServer(ctx context.Context, b *Bootstrapper, connectionString string) error {
	cfg, name, err := sqlServerServerConfig(connectionString)
	if err != nil {
		return err
	}
	catalog := b.open(types.DatabaseTypeSQLServer, mssql.NewConnectorConfig(cfg))
	defer closeCatalog(catalog, b.logger)

	exists, err := catalog.DatabaseExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		b.logger.Debug("Database already exists", "database", name)
		return nil
	}
	if err := catalog.CreateDatabase(ctx, name); err != nil {
		return err
	}
	b.logger.Info("Database created", "database", name, "provider", "sqlserver")
	return nil
}

func bootstrapMySQL(ctx context.Context, b *Bootstrapper, connectionString string) error {
	cfg, name, err := mysqlServerDSN(connectionString)
	if err != nil {
		return err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("failed to build mysql connector: %w", err)
	}
	catalog := b.open(types.DatabaseTypeMySQL, connector)
	defer closeCatalog(catalog, b.logger)

	if err := catalog.CreateDatabase(ctx, name); err != nil {
		return err
	}
	b.logger.Info("Database ensured", "database", name, "provider", "mysql")
	return nil
}

// PostgreSQL databases are provisioned out of band.
func bootstrapPostgreSQL(_ context.Context, b *Bootstrapper, _ string) error {
	b.logger.Info("Skipping database creation, PostgreSQL databases must already exist")
	return nil
}

func bootstrapInMemory(_ context.Context, _ *Bootstrapper, _ string) error {
	return nil
}

func closeCatalog(c serverCatalog, logger Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("Failed to close administrative connection", "error", err)
	}
}

type sqlCatalog struct {
	dt types.DatabaseType
	db *sql.DB
}

func openSQLCatalog(dt types.DatabaseType, connector driver.Connector) serverCatalog {
	return &sqlCatalog{dt: dt, db: sql.OpenDB(connector)}
}

// DatabaseExists is only consulted on SQL Server; MySQL relies on
// CREATE DATABASE IF NOT EXISTS.
func (c *sqlCatalog) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var query string
	var args []interface{}
	switch c.dt {
	case types.DatabaseTypeSQLServer:
		query = "SELECT COUNT(*) FROM sys.databases WHERE name = @name"
		args = []interface{}{sql.Named("name", name)}
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedDatabaseType, c.dt)
	}
	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up database %s: %w", name, err)
	}
	return n > 0, nil
}

func (c *sqlCatalog) CreateDatabase(ctx context.Context, name string) error {
	stmt, err := createDatabaseSQL(c.dt, name)
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

func (c *sqlCatalog) Close() error {
	return c.db.Close()
}

// createDatabaseSQL is conditional on SQL Server, where the caller checks
// existence first, and idempotent on MySQL.
func createDatabaseSQL(dt types.DatabaseType, name string) (string, error) {
	switch dt {
	case types.DatabaseTypeSQLServer:
		return "CREATE DATABASE " + sqlServerPlugin.Quote(name), nil
	case types.DatabaseTypeMySQL:
		return "CREATE DATABASE IF NOT EXISTS " + mysql5Plugin.Quote(name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDatabaseType, dt)
	}
}

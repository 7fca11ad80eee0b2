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
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mssqldialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/planshare/types"
)

// bootstrapStrategy ensures the database named by connectionString exists.
type bootstrapStrategy func(ctx context.Context, b *Bootstrapper, connectionString string) error

// backend is everything that differs between backends. Provider
// selection, the migration registrar and the bootstrapper all read it.
type backend struct {
	name       string
	driverName string
	dialect    func() schema.Dialect
	plugin     *DialectPlugin
	bootstrap  bootstrapStrategy
}

var providers = map[types.DatabaseType]backend{
	types.DatabaseTypeSQLServer: {
		name:       "sqlserver",
		driverName: "sqlserver",
		dialect:    func() schema.Dialect { return mssqldialect.New() },
		plugin:     sqlServerPlugin,
		bootstrap:  bootstrapSQLServer,
	},
	types.DatabaseTypeMySQL: {
		name:       "mysql",
		driverName: "mysql",
		dialect:    func() schema.Dialect { return mysqldialect.New() },
		plugin:     mysql5Plugin,
		bootstrap:  bootstrapMySQL,
	},
	types.DatabaseTypePostgreSQL: {
		name:       "postgres",
		driverName: "postgres",
		dialect:    func() schema.Dialect { return pgdialect.New() },
		plugin:     postgresPlugin,
		bootstrap:  bootstrapPostgreSQL,
	},
}

var inMemoryProvider = backend{
	name:       "sqlite-memory",
	driverName: sqliteshim.ShimName,
	dialect:    func() schema.Dialect { return sqlitedialect.New() },
	plugin:     sqlitePlugin,
	bootstrap:  bootstrapInMemory,
}

func lookupProvider(dt types.DatabaseType, inMemory bool) (backend, bool) {
	if inMemory {
		return inMemoryProvider, true
	}
	backend, ok := providers[dt]
	return backend, ok
}

// DialectFor returns the migration dialect plugin used for dt.
func DialectFor(dt types.DatabaseType) (*DialectPlugin, bool) {
	backend, ok := providers[dt]
	if !ok || backend.plugin == nil {
		return nil, false
	}
	return backend.plugin, true
}

// Provider is the configured ORM context of a process: one driver, one
// dialect, one connection pool.
type Provider struct {
	Type     types.DatabaseType
	InMemory bool
	// ServerVersion is filled by Connect for MySQL.
	ServerVersion string

	backend backend
	config  Config
	db      *bun.DB
	logger  Logger
}

// SelectProvider maps cfg.Type to its driver and opens a lazy connection
// pool. No connection is made until Connect or the first query.
func SelectProvider(cfg *Config, logger Logger) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	c := *cfg
	c.applyDefaults()
	logger = loggerOrDefault(logger)

	backend, ok := lookupProvider(c.Type, c.InMemory)
	if !ok {
		if !c.LegacyMySQLFallback {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabaseType, c.Type)
		}
		logger.Warn("No provider matches the database type, falling back to MySQL", "type", c.Type.String())
		backend = providers[types.DatabaseTypeMySQL]
	}

	p := &Provider{
		Type:     c.Type,
		InMemory: c.InMemory,
		backend:  backend,
		config:   c,
		logger:   logger,
	}
	db, err := p.open()
	if err != nil {
		return nil, err
	}
	p.db = db
	return p, nil
}

func (p *Provider) dsn() (string, error) {
	switch p.backend.driverName {
	case sqliteshim.ShimName:
		return sqliteMemoryDSN(p.config.InMemoryName), nil
	case "mysql":
		return normalizeMySQLDSN(p.config.ConnectionString)
	default:
		return p.config.ConnectionString, nil
	}
}

func (p *Provider) open() (*bun.DB, error) {
	dsn, err := p.dsn()
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(p.backend.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", p.backend.name, err)
	}

	if p.InMemory {
		// A shared-cache memory database lives as long as one connection does.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(p.config.MaxOpenConns)
		sqlDB.SetMaxIdleConns(p.config.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(p.config.ConnMaxLifetime)
	}

	db := bun.NewDB(sqlDB, p.backend.dialect())
	if p.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	db.AddQueryHook(NewQueryHook(os.Stderr))
	db.AddQueryHook(NewSlowQueryHook(p.config.SlowQueryTime, p.logger))
	return db, nil
}

// Name is the provider name used in logs and status output.
func (p *Provider) Name() string { return p.backend.name }

// Dialect is the migration dialect plugin of this provider.
func (p *Provider) Dialect() *DialectPlugin { return p.backend.plugin }

func (p *Provider) DB() *bun.DB { return p.db }

// Connect verifies connectivity and, for MySQL, detects the server version.
func (p *Provider) Connect(ctx context.Context) error {
	if p.db == nil {
		return ErrNotConnected
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout)
	defer cancel()

	if err := p.db.PingContext(ctxTimeout); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if p.backend.driverName == "mysql" {
		var version string
		if err := p.db.QueryRowContext(ctxTimeout, "SELECT VERSION()").Scan(&version); err != nil {
			return fmt.Errorf("failed to detect mysql server version: %w", err)
		}
		p.ServerVersion = version
	}
	p.logger.Info("Database connected", "provider", p.backend.name, "server_version", p.ServerVersion)
	return nil
}

// HealthCheck pings the database and reports pool usage.
func (p *Provider) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Provider:      p.backend.name,
		ServerVersion: p.ServerVersion,
		LastCheckTime: start,
	}
	if p.db == nil {
		status.LastError = ErrNotConnected.Error()
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := p.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
	}

	stats := p.db.DB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (p *Provider) Stats() *DBStats {
	if p.db == nil {
		return &DBStats{}
	}
	stats := p.db.DB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		p.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	p.logger.Info("Database connection closed", "provider", p.backend.name)
	return nil
}

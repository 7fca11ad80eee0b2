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

package planshare

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/planshare/config"
	"github.com/tomoncle/planshare/database"
	"github.com/tomoncle/planshare/entity"
	_ "github.com/tomoncle/planshare/migrations"
	"github.com/tomoncle/planshare/repository"
	"github.com/tomoncle/planshare/security/cryptography"
	"github.com/tomoncle/planshare/security/tokens"
	"github.com/tomoncle/planshare/utils"
)

// Infrastructure holds every service built from one resolved Settings.
type Infrastructure struct {
	Settings *config.Settings

	Provider     *database.Provider
	Bootstrapper *database.Bootstrapper
	Migrations   *database.MigrationManager

	UnitOfWork   *repository.UnitOfWork
	UserReadOnly repository.UserReadOnlyRepository
	UserWrite    repository.UserWriteOnlyRepository
	UserUpdate   repository.UserUpdateOnlyRepository

	TokenGenerator    *tokens.Generator
	TokenValidator    *tokens.Validator
	PasswordEncrypter cryptography.PasswordEncrypter

	logger database.Logger
}

// Option customises AddInfrastructure.
type Option func(*options)

type options struct {
	logger     database.Logger
	registry   *database.MigrationRegistry
	bcryptCost int
}

// WithLogger replaces the DATABASE logger.
func WithLogger(l database.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMigrationRegistry replaces the default migration registry.
func WithMigrationRegistry(r *database.MigrationRegistry) Option {
	return func(o *options) { o.registry = r }
}

// WithBCryptCost sets the password hashing cost.
func WithBCryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// DatabaseConfig converts resolved settings into the database package config.
func DatabaseConfig(s *config.Settings) *database.Config {
	d := s.Database
	return &database.Config{
		Type:                d.Type,
		ConnectionString:    d.ConnectionString,
		InMemory:            d.InMemory,
		MaxOpenConns:        d.MaxOpenConns,
		MaxIdleConns:        d.MaxIdleConns,
		ConnMaxLifetime:     d.ConnMaxLifetime,
		ConnectTimeout:      d.ConnectTimeout,
		EnableQueryLog:      d.EnableQueryLog,
		SlowQueryTime:       d.SlowQueryTime,
		SeedPath:            d.SeedPath,
		Environment:         s.Environment,
		LegacyMySQLFallback: d.LegacyMySQLFallback,
	}
}

// AddInfrastructure builds the infrastructure services. No database
// connection is made here; call Startup for that.
func AddInfrastructure(settings *config.Settings, opts ...Option) (*Infrastructure, error) {
	if settings == nil {
		return nil, errors.New("settings cannot be empty")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	utils.ConfigureLogLevel(settings.Logging.Level)
	logger := o.logger
	if logger == nil {
		logger = database.GetLogger()
	}

	infra := &Infrastructure{Settings: settings, logger: logger}
	infra.PasswordEncrypter = cryptography.NewBCrypt(o.bcryptCost)
	if err := infra.addTokenHandlers(); err != nil {
		return nil, err
	}
	if err := infra.addDatabase(o.registry); err != nil {
		return nil, err
	}
	infra.addRepositories()
	return infra, nil
}

func (i *Infrastructure) addTokenHandlers() error {
	jwt := i.Settings.Jwt
	if jwt.SigningKey == "" {
		return nil
	}
	gen, err := tokens.NewGenerator(jwt.ExpiresMinutes, jwt.SigningKey)
	if err != nil {
		return err
	}
	i.TokenGenerator = gen
	i.TokenValidator = tokens.NewValidator(jwt.SigningKey)
	return nil
}

func (i *Infrastructure) addDatabase(registry *database.MigrationRegistry) error {
	cfg := DatabaseConfig(i.Settings)
	provider, err := database.SelectProvider(cfg, i.logger)
	if err != nil {
		return fmt.Errorf("failed to select database provider: %w", err)
	}
	runner, err := database.NewMigrationRunner(provider.DB(), database.RunnerConfig{
		Type:     cfg.Type,
		InMemory: cfg.InMemory,
		Registry: registry,
		Logger:   i.logger,
	})
	if err != nil {
		_ = provider.Close()
		return fmt.Errorf("failed to configure migration runner: %w", err)
	}
	i.Provider = provider
	i.Bootstrapper = database.NewBootstrapper(i.logger)
	i.Migrations = runner
	return nil
}

func (i *Infrastructure) addRepositories() {
	i.UnitOfWork = repository.NewUnitOfWork(i.Provider.DB())
	users := repository.NewUserRepository(i.Provider.DB(), i.UnitOfWork)
	i.UserReadOnly = users
	i.UserWrite = users
	i.UserUpdate = users
}

// DB is the ORM handle shared by every repository.
func (i *Infrastructure) DB() *bun.DB { return i.Provider.DB() }

// Startup ensures the database exists, connects, applies pending migrations
// and runs seed files. In in-memory mode there is no server to bootstrap.
// The first error aborts startup.
func (i *Infrastructure) Startup(ctx context.Context) error {
	d := i.Settings.Database
	if !d.InMemory {
		if err := i.Bootstrapper.EnsureDatabase(ctx, d.Type, d.ConnectionString); err != nil {
			return err
		}
	}
	if err := i.Provider.Connect(ctx); err != nil {
		return err
	}
	if err := database.Migrate(ctx, i.Migrations); err != nil {
		return err
	}
	if d.SeedPath != "" {
		seeds := database.NewSeedManager(i.DB(), d.SeedPath, i.Settings.Environment, i.logger)
		if _, err := seeds.Run(ctx); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}
	return nil
}

// LoggedUser returns the active user identified by an access token.
func (i *Infrastructure) LoggedUser(ctx context.Context, token string) (*entity.User, error) {
	if i.TokenValidator == nil {
		return nil, errors.New("access tokens are not configured")
	}
	id, err := i.TokenValidator.ValidateAndGetUserIdentifier(token)
	if err != nil {
		return nil, err
	}
	active, err := i.UserReadOnly.ExistActiveUserWithIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, repository.ErrUserNotFound
	}
	return i.UserUpdate.GetById(ctx, id)
}

// Close releases the connection pool.
func (i *Infrastructure) Close() error {
	if i.Provider == nil {
		return nil
	}
	return i.Provider.Close()
}

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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tomoncle/planshare/entity"
)

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

type UserReadOnlyRepository interface {
	ExistActiveUserWithEmail(ctx context.Context, email string) (bool, error)
	ExistActiveUserWithIdentifier(ctx context.Context, id uuid.UUID) (bool, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type UserWriteOnlyRepository interface {
	Add(ctx context.Context, user *entity.User) error
}

type UserUpdateOnlyRepository interface {
	GetById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Update(user *entity.User)
}

// UserRepository implements every user facet. Writes are queued on the unit
// of work.
type UserRepository struct {
	base Repository[entity.User]
	uow  *UnitOfWork
}

var (
	_ UserReadOnlyRepository   = (*UserRepository)(nil)
	_ UserWriteOnlyRepository  = (*UserRepository)(nil)
	_ UserUpdateOnlyRepository = (*UserRepository)(nil)
)

func NewUserRepository(db *bun.DB, uow *UnitOfWork) *UserRepository {
	return &UserRepository{base: NewRepository[entity.User](db), uow: uow}
}

func (r *UserRepository) ExistActiveUserWithEmail(ctx context.Context, email string) (bool, error) {
	return r.base.Exists(ctx, "? = ? AND ? = ?",
		bun.Ident("Email"), email, bun.Ident("Active"), true)
}

func (r *UserRepository) ExistActiveUserWithIdentifier(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.Exists(ctx, "? = ? AND ? = ?",
		bun.Ident("Id"), id, bun.Ident("Active"), true)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := r.base.FindOne(ctx, "? = ? AND ? = ?",
		bun.Ident("Email"), email, bun.Ident("Active"), true)
	return u, notFound(err)
}

func (r *UserRepository) GetById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, err := r.base.GetOne(ctx, id)
	return u, notFound(err)
}

// Add queues the insert of user, assigning an Id and CreatedOn when unset.
func (r *UserRepository) Add(_ context.Context, user *entity.User) error {
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedOn.IsZero() {
		user.CreatedOn = time.Now().UTC()
	}
	r.uow.enqueue(func(ctx context.Context, tx bun.Tx) error {
		return r.base.CreateWithTx(ctx, tx, user)
	})
	return nil
}

// Update queues a full update of user by primary key.
func (r *UserRepository) Update(user *entity.User) {
	r.uow.enqueue(func(ctx context.Context, tx bun.Tx) error {
		return r.base.UpdateWithTx(ctx, tx, user)
	})
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

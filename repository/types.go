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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines reads for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	FindOne(ctx context.Context, query string, args ...interface{}) (*T, error)

	Exists(ctx context.Context, query string, args ...interface{}) (bool, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)
}

// TransactionRepository defines inserts and updates executed on a
// transaction or DB.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T) error
}

// Repository combines reads and transactional writes and exposes a Bun
// select builder for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
}

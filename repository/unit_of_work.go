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
	"sync"

	"github.com/uptrace/bun"
)

type operation func(ctx context.Context, tx bun.Tx) error

// UnitOfWork queues writes from the write-only and update-only repositories
// and persists them together on Commit.
type UnitOfWork struct {
	db      *bun.DB
	mu      sync.Mutex
	pending []operation
}

func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) enqueue(op operation) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, op)
}

// Pending reports how many writes wait for Commit.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Commit runs every queued write in one transaction. The queue is cleared
// whether or not the transaction succeeds.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	ops := u.pending
	u.pending = nil
	u.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}
	return u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, op := range ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

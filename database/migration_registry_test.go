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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func noopUp(context.Context, bun.Tx, *DialectPlugin) error { return nil }

func TestMigrationRegistryOrdersByVersion(t *testing.T) {
	r := NewMigrationRegistry()
	require.NoError(t, r.Register(Migration{Version: 3, Description: "third", Up: noopUp}))
	require.NoError(t, r.Register(Migration{Version: 1, Description: "first", Up: noopUp}))
	require.NoError(t, r.Register(Migration{Version: 2, Description: "second", Up: noopUp}))

	var versions []int64
	for _, m := range r.Migrations() {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int64{1, 2, 3}, versions)
}

func TestMigrationRegistryRejectsInvalid(t *testing.T) {
	r := NewMigrationRegistry()
	require.NoError(t, r.Register(Migration{Version: 1, Up: noopUp}))

	assert.Error(t, r.Register(Migration{Version: 1, Up: noopUp}))
	assert.Error(t, r.Register(Migration{Version: 0, Up: noopUp}))
	assert.Error(t, r.Register(Migration{Version: -4, Up: noopUp}))
	assert.Error(t, r.Register(Migration{Version: 2}))
	assert.Panics(t, func() { r.MustRegister(Migration{Version: 1, Up: noopUp}) })
	assert.Len(t, r.Migrations(), 1)
}

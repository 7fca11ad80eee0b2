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

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User maps the Users table.
type User struct {
	bun.BaseModel `bun:"table:Users,alias:u"`

	Id        uuid.UUID `bun:"Id,pk" json:"id"`
	Name      string    `bun:"Name" json:"name"`
	Email     string    `bun:"Email" json:"email"`
	Password  string    `bun:"Password" json:"-"`
	Active    bool      `bun:"Active" json:"active"`
	CreatedOn time.Time `bun:"CreatedOn" json:"created_on"`
}

// NewUser returns an active user with a fresh identifier.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Id:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		Active:    true,
		CreatedOn: time.Now().UTC(),
	}
}

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

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidDatabaseType is returned when a configured database type does not
// name a known DatabaseType member.
var ErrInvalidDatabaseType = errors.New("invalid database type")

// DatabaseType selects the relational backend of a deployment. Exactly one
// value is active per process.
type DatabaseType int

const (
	DatabaseTypeUnspecified DatabaseType = iota
	DatabaseTypeSQLServer
	DatabaseTypeMySQL
	DatabaseTypePostgreSQL
)

var _ BaseEnum = DatabaseTypeUnspecified

var databaseTypeNames = map[DatabaseType]string{
	DatabaseTypeUnspecified: "Unspecified",
	DatabaseTypeSQLServer:   "SQLServer",
	DatabaseTypeMySQL:       "MySQL",
	DatabaseTypePostgreSQL:  "PostgreSQL",
}

var databaseTypeDescs = map[DatabaseType]string{
	DatabaseTypeUnspecified: "no explicit backend",
	DatabaseTypeSQLServer:   "Microsoft SQL Server",
	DatabaseTypeMySQL:       "MySQL 5.7+ / MariaDB",
	DatabaseTypePostgreSQL:  "PostgreSQL",
}

// DatabaseTypes lists every defined member in declaration order.
func DatabaseTypes() []DatabaseType {
	return []DatabaseType{
		DatabaseTypeUnspecified,
		DatabaseTypeSQLServer,
		DatabaseTypeMySQL,
		DatabaseTypePostgreSQL,
	}
}

// ParseDatabaseType parses a member name ("MySQL") or its number ("2").
// Names are case sensitive.
func ParseDatabaseType(s string) (DatabaseType, error) {
	dt, err := parseEnum(s, DatabaseTypes())
	if err != nil {
		return DatabaseTypeUnspecified, fmt.Errorf("%w: %v", ErrInvalidDatabaseType, err)
	}
	return dt, nil
}

func (d DatabaseType) IsValid() bool {
	_, ok := databaseTypeNames[d]
	return ok
}

func (d DatabaseType) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d DatabaseType) Name() string {
	if name, ok := databaseTypeNames[d]; ok {
		return name
	}
	return IllegalName
}

func (d DatabaseType) Desc() string {
	if desc, ok := databaseTypeDescs[d]; ok {
		return desc
	}
	return IllegalDesc
}

func (d DatabaseType) String() string {
	if d.IsValid() {
		return d.Name()
	}
	return fmt.Sprintf("DatabaseType(%d)", int(d))
}

// MarshalYAML renders the member name.
func (d DatabaseType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

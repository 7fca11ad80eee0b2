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
	"strings"
)

// ColumnKind is an abstract column type translated per dialect.
type ColumnKind int

const (
	ColumnGuid ColumnKind = iota
	ColumnString
	ColumnBoolean
	ColumnDateTime
	ColumnInt64
)

// Column is one column of a Table definition.
type Column struct {
	Name       string
	Kind       ColumnKind
	Size       int
	PrimaryKey bool
	Nullable   bool
	Unique     bool
	Default    interface{}
}

// Table is a dialect neutral table definition used by migrations.
type Table struct {
	Name    string
	Columns []Column
}

// UniqueIndexName follows the IX_<table>_<column> convention.
func UniqueIndexName(table, column string) string {
	return "IX_" + table + "_" + column
}

// DialectPlugin turns Table definitions into vendor SQL for the migration
// runner.
type DialectPlugin struct {
	name        string
	openQuote   string
	closeQuote  string
	types       map[ColumnKind]string
	trueLiteral string
	// ifNotExists formats a create-if-absent statement for table.
	ifNotExists func(p *DialectPlugin, table, body string) string
}

func (p *DialectPlugin) Name() string { return p.name }

// Quote quotes an identifier, doubling any embedded closing quote.
func (p *DialectPlugin) Quote(ident string) string {
	return p.openQuote + strings.ReplaceAll(ident, p.closeQuote, p.closeQuote+p.closeQuote) + p.closeQuote
}

// ColumnType returns the vendor type of c.
func (p *DialectPlugin) ColumnType(c Column) string {
	t := p.types[c.Kind]
	if c.Kind == ColumnString {
		size := c.Size
		if size <= 0 {
			size = 255
		}
		return fmt.Sprintf("%s(%d)", t, size)
	}
	return t
}

// Literal renders a default value.
func (p *DialectPlugin) Literal(v interface{}) string {
	switch x := v.(type) {
	case bool:
		if x {
			return p.trueLiteral
		}
		if p.trueLiteral == "true" {
			return "false"
		}
		return "0"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	default:
		return fmt.Sprint(x)
	}
}

func (p *DialectPlugin) columnSQL(c Column) string {
	var b strings.Builder
	b.WriteString(p.Quote(c.Name))
	b.WriteString(" ")
	b.WriteString(p.ColumnType(c))
	if c.Nullable && !c.PrimaryKey {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(p.Literal(c.Default))
	}
	return b.String()
}

// CreateTableSQL returns the statements creating t, the table first and one
// CREATE UNIQUE INDEX per unique column after it.
func (p *DialectPlugin) CreateTableSQL(t Table, ifNotExists bool) []string {
	defs := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		defs = append(defs, p.columnSQL(c))
		if c.PrimaryKey {
			pks = append(pks, p.Quote(c.Name))
		}
	}
	if len(pks) > 0 {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			p.Quote("PK_"+t.Name), strings.Join(pks, ", ")))
	}
	body := "(" + strings.Join(defs, ", ") + ")"

	var create string
	if ifNotExists {
		create = p.ifNotExists(p, t.Name, body)
	} else {
		create = "CREATE TABLE " + p.Quote(t.Name) + " " + body
	}

	stmts := []string{create}
	for _, c := range t.Columns {
		if c.Unique && !c.PrimaryKey {
			stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
				p.Quote(UniqueIndexName(t.Name, c.Name)), p.Quote(t.Name), p.Quote(c.Name)))
		}
	}
	return stmts
}

// LedgerTable is the applied-version ledger.
var LedgerTable = Table{
	Name: "VersionInfo",
	Columns: []Column{
		{Name: "Version", Kind: ColumnInt64, PrimaryKey: true},
		{Name: "AppliedOn", Kind: ColumnDateTime, Nullable: true},
		{Name: "Description", Kind: ColumnString, Size: 1024, Nullable: true},
	},
}

// CreateLedgerSQL returns the create-if-absent DDL of the ledger table.
func (p *DialectPlugin) CreateLedgerSQL() string {
	return p.CreateTableSQL(LedgerTable, true)[0]
}

func standardIfNotExists(p *DialectPlugin, table, body string) string {
	return "CREATE TABLE IF NOT EXISTS " + p.Quote(table) + " " + body
}

func sqlServerIfNotExists(p *DialectPlugin, table, body string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s %s",
		strings.ReplaceAll(table, "'", "''"), p.Quote(table), body)
}

// Dialect plugin names.
const (
	DialectMySQL5    = "mysql5"
	DialectSQLServer = "sqlserver"
	DialectPostgres  = "postgres"
	DialectSQLite    = "sqlite"
)

var (
	mysql5Plugin = &DialectPlugin{
		name:      DialectMySQL5,
		openQuote: "`", closeQuote: "`",
		types: map[ColumnKind]string{
			ColumnGuid:     "CHAR(36)",
			ColumnString:   "VARCHAR",
			ColumnBoolean:  "TINYINT(1)",
			ColumnDateTime: "DATETIME",
			ColumnInt64:    "BIGINT",
		},
		trueLiteral: "1",
		ifNotExists: standardIfNotExists,
	}
	sqlServerPlugin = &DialectPlugin{
		name:      DialectSQLServer,
		openQuote: "[", closeQuote: "]",
		types: map[ColumnKind]string{
			ColumnGuid:     "UNIQUEIDENTIFIER",
			ColumnString:   "NVARCHAR",
			ColumnBoolean:  "BIT",
			ColumnDateTime: "DATETIME",
			ColumnInt64:    "BIGINT",
		},
		trueLiteral: "1",
		ifNotExists: sqlServerIfNotExists,
	}
	postgresPlugin = &DialectPlugin{
		name:      DialectPostgres,
		openQuote: `"`, closeQuote: `"`,
		types: map[ColumnKind]string{
			ColumnGuid:     "UUID",
			ColumnString:   "VARCHAR",
			ColumnBoolean:  "BOOLEAN",
			ColumnDateTime: "TIMESTAMP",
			ColumnInt64:    "BIGINT",
		},
		trueLiteral: "true",
		ifNotExists: standardIfNotExists,
	}
	sqlitePlugin = &DialectPlugin{
		name:      DialectSQLite,
		openQuote: `"`, closeQuote: `"`,
		types: map[ColumnKind]string{
			ColumnGuid:     "VARCHAR(36)",
			ColumnString:   "VARCHAR",
			ColumnBoolean:  "BOOLEAN",
			ColumnDateTime: "TIMESTAMP",
			ColumnInt64:    "BIGINT",
		},
		trueLiteral: "1",
		ifNotExists: standardIfNotExists,
	}
)

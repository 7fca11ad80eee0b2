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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const commonSeedDir = "common"

var seedOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SeedManager runs SQL seed files after migrations. Files live in
// <root>/common and <root>/environments/<env>; common files run first, then
// each group in the numeric order of its NNN_ prefix. Seed files are run on
// every startup and must be idempotent.
type SeedManager struct {
	db          *bun.DB
	environment string
	root        string
	logger      Logger
}

// SeedFile describes a SQL file found under the seed root.
type SeedFile struct {
	Path        string
	Name        string
	Order       int
	Environment string
}

// SeedResult is the outcome of one seed file.
type SeedResult struct {
	File         string
	Duration     time.Duration
	RowsAffected int64
}

func NewSeedManager(db *bun.DB, root, environment string, logger Logger) *SeedManager {
	return &SeedManager{
		db:          db,
		environment: environment,
		root:        root,
		logger:      loggerOrDefault(logger),
	}
}

// Run executes every seed file, each in its own transaction, and stops at
// the first failure.
func (s *SeedManager) Run(ctx context.Context) ([]SeedResult, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Info("No SQL seed files found", "path", s.root)
		return nil, nil
	}

	results := make([]SeedResult, 0, len(files))
	for _, f := range files {
		res, err := s.runFile(ctx, f)
		if err != nil {
			s.logger.Error("SQL seed file failed", "file", f.Path, "error", err)
			return results, fmt.Errorf("seed file %s: %w", f.Path, err)
		}
		s.logger.Info("SQL seed file executed", "file", f.Name, "duration", res.Duration.String(), "rows_affected", res.RowsAffected)
		results = append(results, res)
	}
	s.logger.Info("SQL seeding completed", "files", len(results), "environment", s.environment)
	return results, nil
}

// Files lists seed files in execution order.
func (s *SeedManager) Files() ([]SeedFile, error) {
	var files []SeedFile
	groups := []struct{ dir, env string }{
		{filepath.Join(s.root, commonSeedDir), commonSeedDir},
	}
	if s.environment != "" {
		groups = append(groups, struct{ dir, env string }{filepath.Join(s.root, "environments", s.environment), s.environment})
	}
	for _, g := range groups {
		if _, err := os.Stat(g.dir); err != nil {
			continue
		}
		found, err := listSeedFiles(g.dir, g.env)
		if err != nil {
			return nil, fmt.Errorf("failed to list seed files in %s: %w", g.dir, err)
		}
		files = append(files, found...)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == commonSeedDir
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func listSeedFiles(dir, env string) ([]SeedFile, error) {
	var files []SeedFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, SeedFile{
			Path:        path,
			Name:        d.Name(),
			Order:       seedOrder(d.Name()),
			Environment: env,
		})
		return nil
	})
	return files, err
}

func seedOrder(name string) int {
	if m := seedOrderPattern.FindStringSubmatch(name); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 999
}

func (s *SeedManager) runFile(ctx context.Context, f SeedFile) (SeedResult, error) {
	start := time.Now()
	res := SeedResult{File: f.Path}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return res, fmt.Errorf("failed to read file: %w", err)
	}
	rendered, err := s.render(string(content))
	if err != nil {
		return res, err
	}
	stmts := splitSQLStatements(rendered)

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range stmts {
			r, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute %q: %w", stmt, err)
			}
			n, _ := r.RowsAffected()
			res.RowsAffected += n
		}
		return nil
	})
	res.Duration = time.Since(start)
	return res, err
}

// render expands {{.NAME}} placeholders with environment variables plus
// ENVIRONMENT and TIMESTAMP.
func (s *SeedManager) render(content string) (string, error) {
	if !strings.Contains(content, "{{") {
		return content, nil
	}
	tmpl, err := template.New("seed").Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse seed template: %w", err)
	}
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = s.environment
	vars["TIMESTAMP"] = time.Now().UTC().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render seed template: %w", err)
	}
	return buf.String(), nil
}

// splitSQLStatements splits on lines ending with ";" and drops "--" comment
// lines.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, strings.TrimSuffix(stmt, ";"))
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return statements
}

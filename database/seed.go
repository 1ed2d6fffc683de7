/*
 * Copyright 2026 quarrydb.
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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

const defaultSeedRoot = "configs/sql"

// Seeder executes seed SQL files for an environment. Files under
// <root>/common run first, then files under <root>/<environment>, each
// directory in lexical order. Every file runs in its own transaction.
type Seeder struct {
	db          *bun.DB
	environment string
	root        string
	logger      Logger
}

// NewSeeder constructs a Seeder for the given environment.
func NewSeeder(db *bun.DB, environment string) *Seeder {
	return &Seeder{
		db:          db,
		environment: environment,
		root:        defaultSeedRoot,
		logger:      GetLogger(),
	}
}

// SetRootPath overrides the directory containing seed SQL files.
func (s *Seeder) SetRootPath(root string) {
	if root != "" {
		s.root = root
	}
}

// Execute runs all applicable seed files. A missing directory is not an
// error; a failing statement aborts the run.
func (s *Seeder) Execute() error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	dirs := []string{
		filepath.Join(s.root, "common"),
		filepath.Join(s.root, s.environment),
	}
	for _, dir := range dirs {
		files, err := listSQLFiles(dir)
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := s.executeFile(file); err != nil {
				return fmt.Errorf("seed file %s failed: %w", file, err)
			}
		}
	}
	return nil
}

func listSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seed directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *Seeder) executeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range splitStatements(string(data)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if s.logger != nil {
		s.logger.Info("Seed file executed", "file", path)
	}
	return nil
}

// splitStatements breaks a script on semicolons and drops blank pieces and
// full-line comments. Semicolons inside string literals are not handled;
// seed files are expected to keep one statement per terminator.
func splitStatements(script string) []string {
	var statements []string
	for _, piece := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(piece, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

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

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// ForeignKey describes a foreign key relationship between tables.
type ForeignKey struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string `yaml:"constraint_name"`
}

// foreignKeyFile is the YAML structure that lists foreign key constraints.
type foreignKeyFile struct {
	ForeignKeys []ForeignKey `yaml:"foreign_keys"`
}

// Name returns the explicit constraint name or a derived one.
func (fk *ForeignKey) Name() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// SQL returns the ALTER TABLE statement that adds the constraint.
func (fk *ForeignKey) SQL() string {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.Name(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		stmt += fmt.Sprintf(" ON DELETE %s", fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		stmt += fmt.Sprintf(" ON UPDATE %s", fk.OnUpdate)
	}
	return stmt
}

// ForeignKeyManager applies foreign key constraints loaded from a YAML file.
type ForeignKeyManager struct {
	constraints []ForeignKey
	logger      Logger
}

// NewForeignKeyManager loads constraints from the given YAML path. An empty
// or missing path yields a manager with no constraints.
func NewForeignKeyManager(logger Logger, configPath string) (*ForeignKeyManager, error) {
	manager := &ForeignKeyManager{logger: logger}
	if configPath == "" {
		return manager, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if logger != nil {
				logger.Debug("Foreign key config not found, skipping", "config_path", configPath)
			}
			return manager, nil
		}
		return nil, fmt.Errorf("failed to read foreign key config: %w", err)
	}

	var file foreignKeyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse foreign key config: %w", err)
	}
	manager.constraints = file.ForeignKeys
	return manager, nil
}

// Validate checks that every constraint names its tables and columns.
func (fkm *ForeignKeyManager) Validate() []error {
	var errs []error
	for _, fk := range fkm.constraints {
		if fk.Table == "" || fk.Column == "" || fk.ReferenceTable == "" || fk.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("incomplete foreign key constraint: %+v", fk))
		}
	}
	return errs
}

// ApplyAll adds every constraint, skipping ones that already exist.
func (fkm *ForeignKeyManager) ApplyAll(ctx context.Context, db bun.IDB) error {
	for _, fk := range fkm.constraints {
		if _, err := db.ExecContext(ctx, fk.SQL()); err != nil {
			if kind, ok := ClassifySQLError(err); ok && (kind == SQLErrTableExists || kind == SQLErrIndexExists || kind == SQLErrDuplicateKey) {
				if fkm.logger != nil {
					fkm.logger.Debug("Foreign key constraint already exists, skipping", "constraint", fk.Name())
				}
				continue
			}
			return fmt.Errorf("failed to add foreign key %s: %w", fk.Name(), err)
		}
		if fkm.logger != nil {
			fkm.logger.Info("Foreign key constraint added", "constraint", fk.Name())
		}
	}
	return nil
}

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

package repository

import (
	"context"

	"github.com/quarrydb/quarry/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines row-level operations for a generic entity type.
// Errors from the underlying client propagate verbatim; the only local
// mapping is that single-row lookups return nil instead of an error when
// no row matches.
type CrudRepository[T any] interface {
	// Get returns the row with the given id, or (nil, nil) when none exists.
	Get(ctx context.Context, id any) (*T, error)

	// GetAll returns every row of the table.
	GetAll(ctx context.Context) ([]*T, error)

	// Find returns rows matching the optional filter and ordering.
	Find(ctx context.Context, options *types.FindOptions) ([]*T, error)

	// Query applies a raw WHERE clause and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Create inserts one row and returns it as stored.
	Create(ctx context.Context, entity *T) (*T, error)

	// CreateMany inserts multiple rows in a single statement and returns them.
	CreateMany(ctx context.Context, entities []*T) ([]*T, error)

	// Update modifies the row with the given id and returns the updated row,
	// or (nil, nil) when no row matched.
	Update(ctx context.Context, id any, entity *T) (*T, error)

	// UpdateMany updates each entity by primary key, strictly one at a time
	// and in input order. The first failure aborts the remainder; completed
	// updates are not rolled back.
	UpdateMany(ctx context.Context, entities []*T) error

	// Delete removes the row with the given id.
	Delete(ctx context.Context, id any) error

	// DeleteMany removes all rows whose id is in the given set.
	DeleteMany(ctx context.Context, ids []any) error

	// Upsert inserts entities, updating the listed fields when a row with
	// the same conflict columns already exists. Conflict columns default
	// to the id column.
	Upsert(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) error

	// Exists reports whether at least one row matches the filter.
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)

	// Count returns the exact number of rows matching the filter without
	// fetching them.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
}

// PageQueryRepository defines offset pagination for listing entities.
type PageQueryRepository[T any] interface {
	FindPage(ctx context.Context, req *types.PageRequest) (*types.Page[T], error)
}

// TransactionRepository defines write operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entities ...*T) error
	UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, conflictColumns []string, entities ...*T) error
	UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

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

package quarry

import (
	"context"
	"sync"

	"github.com/quarrydb/quarry/database"
	"github.com/quarrydb/quarry/repository"
	"github.com/quarrydb/quarry/types"

	"github.com/uptrace/bun"
)

// Service is a per-entity facade over the generic repository, bound lazily
// to the global database connection.
type Service[T any] interface {
	// Get returns a single entity by its identifier, or nil when none exists.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// Find returns entities matching the optional filter and ordering.
	Find(ctx context.Context, options *types.FindOptions) ([]*T, error)

	// Query applies a raw WHERE clause and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// FindPage returns a paginated list of entities.
	FindPage(ctx context.Context, req *types.PageRequest) (*types.Page[T], error)

	// Save inserts a new entity and returns it as stored.
	Save(ctx context.Context, model *T) (*T, error)

	// SaveMany inserts multiple entities in one statement and returns them.
	SaveMany(ctx context.Context, models []*T) ([]*T, error)

	// SaveOrUpdate upserts entities keyed on the conflict columns.
	SaveOrUpdate(ctx context.Context, fields []string, conflictColumns []string, models ...*T) error

	// Update modifies the entity with the given id and returns the stored row.
	Update(ctx context.Context, id any, model *T) (*T, error)

	// UpdateMany updates entities one at a time by primary key.
	UpdateMany(ctx context.Context, models []*T) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// DeleteMany removes all entities whose id is in the given set.
	DeleteMany(ctx context.Context, ids []any) error

	// Exists reports whether any entity matches the filter.
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)

	// Count returns the number of entities matching the filter.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// SaveWithTx inserts entities within an existing transaction.
	SaveWithTx(ctx context.Context, tx *bun.Tx, models ...*T) error

	// SaveOrUpdateWithTx upserts entities within a transaction.
	SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, conflictColumns []string, models ...*T) error

	// UpdateWithTx updates an entity within a transaction.
	UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error

	// DeleteWithTx removes an entity within a transaction.
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a default Service implementation using the generic
// repository backed by the global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() { s.repo = repository.NewRepository[T](database.GetDB()) })
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, options *types.FindOptions) ([]*T, error) {
	return s.baseRepo().Find(ctx, options)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return s.baseRepo().Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) FindPage(ctx context.Context, req *types.PageRequest) (*types.Page[T], error) {
	return s.baseRepo().FindPage(ctx, req)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model *T) (*T, error) {
	return s.baseRepo().Create(ctx, model)
}

func (s *baseServiceImpl[T]) SaveMany(ctx context.Context, models []*T) ([]*T, error) {
	return s.baseRepo().CreateMany(ctx, models)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, conflictColumns []string, models ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, conflictColumns, models...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, model *T) (*T, error) {
	return s.baseRepo().Update(ctx, id, model)
}

func (s *baseServiceImpl[T]) UpdateMany(ctx context.Context, models []*T) error {
	return s.baseRepo().UpdateMany(ctx, models)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) DeleteMany(ctx context.Context, ids []any) error {
	return s.baseRepo().DeleteMany(ctx, ids)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	return s.baseRepo().Exists(ctx, filter)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx *bun.Tx, models ...*T) error {
	return s.baseRepo().CreateWithTx(ctx, tx, models...)
}

func (s *baseServiceImpl[T]) SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, conflictColumns []string, models ...*T) error {
	return s.baseRepo().UpsertWithTx(ctx, tx, fields, conflictColumns, models...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error {
	return s.baseRepo().UpdateWithTx(ctx, tx, model)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	return s.baseRepo().DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}

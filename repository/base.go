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
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, options *types.FindOptions) ([]*T, error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	query = applyFindOptions(query, options)
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) FindPage(ctx context.Context, req *types.PageRequest) (*types.Page[T], error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if filter := req.GetFilter(); filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	page := types.NewEmptyPage[T](req.GetPage(), req.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return page, err
	}
	err = query.
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Order(req.OrderExprs()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	page.SetTotal(total)
	if len(entities) > 0 {
		page.Items = entities
	}
	return page, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T) (*T, error) {
	_, err := r.db.NewInsert().Model(entity).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) CreateMany(ctx context.Context, entities []*T) ([]*T, error) {
	if len(entities) == 0 {
		return entities, nil
	}
	_, err := r.db.NewInsert().Model(&entities).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id any, entity *T) (*T, error) {
	res, err := r.db.NewUpdate().Model(entity).Where("id = ?", id).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, nil
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) UpdateMany(ctx context.Context, entities []*T) error {
	// One update in flight at a time, input order preserved. Records updated
	// before a failure stay updated.
	for _, entity := range entities {
		if _, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	var entity T
	_, err := r.db.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteMany(ctx context.Context, ids []any) error {
	if len(ids) == 0 {
		return nil
	}
	var entity T
	_, err := r.db.NewDelete().Model(&entity).Where("id IN (?)", bun.In(ids)).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) error {
	return r.multipleUpsert(ctx, nil, fields, conflictColumns, entities...)
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	query := r.db.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := r.db.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Count(ctx)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entities ...*T) error {
	models := collect(entities...)
	_, err := tx.NewInsert().Model(&models).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, conflictColumns []string, entities ...*T) error {
	return r.multipleUpsert(ctx, tx, fields, conflictColumns, entities...)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error {
	_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	var entity T
	_, err := tx.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) multipleUpsert(ctx context.Context, tx *bun.Tx, fields []string, conflictColumns []string, entities ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("upsert fields cannot be empty")
	}

	var insertQuery *bun.InsertQuery
	if tx != nil {
		insertQuery = tx.NewInsert()
	} else {
		insertQuery = r.db.NewInsert()
	}

	models := collect(entities...)

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, insertQuery, fields, conflictColumns, models)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, insertQuery, fields, models)
	default:
		return r.upsertFallback(ctx, models)
	}
}

// upsertOnConflict implements the PostgreSQL/SQLite form:
// INSERT ... ON CONFLICT (cols) DO UPDATE SET f = EXCLUDED.f.
func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, conflictColumns []string, models []*T) error {
	if len(conflictColumns) == 0 {
		conflictColumns = []string{"id"}
	}
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(field), bun.Ident(field)))
	}
	_, err := insertQuery.
		Model(&models).
		On("CONFLICT (" + strings.Join(conflictColumns, ",") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

// upsertOnDuplicateKey implements the MySQL form; the conflict target is
// whatever unique key the row collides with, so conflict columns are ignored.
func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, models []*T) error {
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(field), bun.Ident(field)))
	}
	_, err := insertQuery.
		Model(&models).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

// upsertFallback tries a plain insert per row and falls back to an update by
// primary key when the insert is rejected.
func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, models []*T) error {
	for _, model := range models {
		if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(model).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}

func applyFindOptions(query *bun.SelectQuery, options *types.FindOptions) *bun.SelectQuery {
	if options == nil {
		return query
	}
	if options.Filter != nil {
		query = query.Where(options.Filter.Schema, options.Filter.Args...)
	}
	if exprs := options.OrderExprs(); len(exprs) > 0 {
		query = query.Order(exprs...)
	}
	return query
}

func collect[T any](entities ...*T) []*T {
	models := make([]*T, len(entities))
	copy(models, entities)
	return models
}

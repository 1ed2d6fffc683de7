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

package types

import "fmt"

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// SortDirection is the ordering direction of an OrderBy clause.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

func (d SortDirection) String() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// OrderBy pairs a column name with a sort direction.
type OrderBy struct {
	Column    string
	Direction SortDirection
}

// Ascending returns an ascending OrderBy for the column.
func Ascending(column string) OrderBy {
	return OrderBy{Column: column, Direction: SortAsc}
}

// Descending returns a descending OrderBy for the column.
func Descending(column string) OrderBy {
	return OrderBy{Column: column, Direction: SortDesc}
}

// Expr renders the clause in the form accepted by Bun's Order, e.g. "name DESC".
func (o OrderBy) Expr() string {
	return fmt.Sprintf("%s %s", o.Column, o.Direction)
}

// FindOptions bundles an optional filter with optional ordering clauses.
// A nil FindOptions (or nil members) means "no restriction".
type FindOptions struct {
	Filter *QueryFilter
	Orders []OrderBy
}

// NewFindOptions constructs FindOptions from a filter and ordering clauses.
func NewFindOptions(filter *QueryFilter, orders ...OrderBy) *FindOptions {
	return &FindOptions{Filter: filter, Orders: orders}
}

// OrderExprs renders all ordering clauses; returns nil when none are set.
func (o *FindOptions) OrderExprs() []string {
	if o == nil || len(o.Orders) == 0 {
		return nil
	}
	exprs := make([]string, len(o.Orders))
	for i, order := range o.Orders {
		exprs[i] = order.Expr()
	}
	return exprs
}

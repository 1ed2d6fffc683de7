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

// DefaultPageSize is used when a PageRequest carries no usable page size.
const DefaultPageSize = 10

// PageRequest describes a 1-based page window with optional filter and ordering.
type PageRequest struct {
	page     int
	pageSize int
	options  *FindOptions
}

// NewPageRequest constructs a PageRequest with find options.
func NewPageRequest(page int, pageSize int, options *FindOptions) *PageRequest {
	return &PageRequest{page, pageSize, options}
}

// NewPageRequestWithFilter constructs a PageRequest with a filter only.
func NewPageRequestWithFilter(page int, pageSize int, filter *QueryFilter) *PageRequest {
	return NewPageRequest(page, pageSize, &FindOptions{Filter: filter})
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(page int, pageSize int, orders ...OrderBy) *PageRequest {
	return NewPageRequest(page, pageSize, &FindOptions{Orders: orders})
}

// NewDefaultPageRequest constructs a PageRequest with no filter or ordering.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil)
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	return p.pageSize
}

// GetOffset returns the row offset of the first item on the requested page.
func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetOptions() *FindOptions {
	return p.options
}

// GetFilter returns the filter carried by the options, or nil.
func (p *PageRequest) GetFilter() *QueryFilter {
	if p.options == nil {
		return nil
	}
	return p.options.Filter
}

// OrderExprs returns the rendered ordering clauses carried by the options.
func (p *PageRequest) OrderExprs() []string {
	return p.options.OrderExprs()
}

// Page holds one page of items along with pagination metadata.
// TotalPages is derived from Total and PageSize via SetTotal.
type Page[T any] struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	Items      []*T `json:"items"`
}

// NewEmptyPage constructs a page container with no items and zero totals.
func NewEmptyPage[T any](page int, pageSize int) *Page[T] {
	return &Page[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}

// SetTotal records the total row count and recomputes TotalPages,
// rounding up so a final partial page is counted.
func (p *Page[T]) SetTotal(total int) {
	p.Total = total
	if p.PageSize > 0 {
		p.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
}

// HasNext reports whether a page beyond the current one exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageRequestClamping(t *testing.T) {
	req := NewDefaultPageRequest(0, 0)
	require.Equal(t, 1, req.GetPage())
	require.Equal(t, DefaultPageSize, req.GetPageSize())
	require.Equal(t, 0, req.GetOffset())

	req = NewDefaultPageRequest(-3, -1)
	require.Equal(t, 1, req.GetPage())
	require.Equal(t, DefaultPageSize, req.GetPageSize())
}

func TestPageRequestOffset(t *testing.T) {
	cases := []struct {
		page, pageSize, offset int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
		{7, 1, 6},
	}
	for _, c := range cases {
		req := NewDefaultPageRequest(c.page, c.pageSize)
		require.Equal(t, c.offset, req.GetOffset(), "page=%d pageSize=%d", c.page, c.pageSize)
	}
}

func TestPageTotalPagesRoundsUp(t *testing.T) {
	cases := []struct {
		total, pageSize, totalPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 7, 15},
	}
	for _, c := range cases {
		page := NewEmptyPage[struct{}](1, c.pageSize)
		page.SetTotal(c.total)
		require.Equal(t, c.totalPages, page.TotalPages, "total=%d pageSize=%d", c.total, c.pageSize)
	}
}

func TestPageHasNext(t *testing.T) {
	page := NewEmptyPage[struct{}](2, 10)
	page.SetTotal(25)
	require.True(t, page.HasNext())

	page = NewEmptyPage[struct{}](3, 10)
	page.SetTotal(25)
	require.False(t, page.HasNext())
}

func TestEmptyPageItemsNotNil(t *testing.T) {
	page := NewEmptyPage[struct{}](1, 10)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
}

func TestOrderByExpr(t *testing.T) {
	require.Equal(t, "name ASC", Ascending("name").Expr())
	require.Equal(t, "created_at DESC", Descending("created_at").Expr())
	require.True(t, SortAsc.IsValid())
	require.False(t, SortDirection(42).IsValid())
}

func TestFindOptionsOrderExprs(t *testing.T) {
	var opts *FindOptions
	require.Nil(t, opts.OrderExprs())

	opts = NewFindOptions(nil)
	require.Nil(t, opts.OrderExprs())

	opts = NewFindOptions(NewQueryFilter("pages > ?", 100), Descending("pages"), Ascending("title"))
	require.Equal(t, []string{"pages DESC", "title ASC"}, opts.OrderExprs())
	require.Equal(t, "pages > ?", opts.Filter.Schema)
	require.Equal(t, []interface{}{100}, opts.Filter.Args)
}

func TestPageRequestFilterAccessors(t *testing.T) {
	req := NewPageRequestWithFilter(2, 5, NewQueryFilter("author = ?", "melville"))
	require.NotNil(t, req.GetFilter())
	require.Nil(t, req.OrderExprs())

	req = NewPageRequestWithOrders(1, 5, Ascending("title"))
	require.Nil(t, req.GetFilter())
	require.Equal(t, []string{"title ASC"}, req.OrderExprs())
}

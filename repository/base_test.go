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

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/quarrydb/quarry/repository"
	"github.com/quarrydb/quarry/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID     string  `bun:"id,pk"`
	Title  string  `bun:"title,notnull"`
	Author string  `bun:"author"`
	Pages  int     `bun:"pages"`
	ISBN   *string `bun:"isbn,notnull"`
}

func isbn(s string) *string { return &s }

func newBook(title, author string, pages int) *book {
	return &book{
		ID:     uuid.NewString(),
		Title:  title,
		Author: author,
		Pages:  pages,
		ISBN:   isbn(uuid.NewString()),
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*book)(nil)).Exec(context.Background())
	require.NoError(t, err)
	return db
}

func newTestRepo(t *testing.T) repository.Repository[book] {
	t.Helper()
	return repository.NewRepository[book](newTestDB(t))
}

func TestGetReturnsNilWhenMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get(context.Background(), "no-such-id")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newBook("Moby-Dick", "melville", 635))
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Moby-Dick", got.Title)
	require.Equal(t, 635, got.Pages)
}

func TestCreateManyAndGetAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	books := []*book{
		newBook("a", "x", 1),
		newBook("b", "y", 2),
		newBook("c", "z", 3),
	}
	inserted, err := repo.CreateMany(ctx, books)
	require.NoError(t, err)
	require.Len(t, inserted, 3)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestCreateManyEmptyIsNoop(t *testing.T) {
	repo := newTestRepo(t)

	inserted, err := repo.CreateMany(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, inserted)
}

func TestFindWithFilterAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateMany(ctx, []*book{
		newBook("thin", "a", 90),
		newBook("medium", "a", 250),
		newBook("thick", "b", 900),
	})
	require.NoError(t, err)

	found, err := repo.Find(ctx, types.NewFindOptions(
		types.NewQueryFilter("pages > ?", 100),
		types.Descending("pages"),
	))
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "thick", found[0].Title)
	require.Equal(t, "medium", found[1].Title)

	// nil options means no restriction
	all, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestQueryRawClause(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateMany(ctx, []*book{
		newBook("one", "a", 100),
		newBook("two", "b", 200),
	})
	require.NoError(t, err)

	found, err := repo.Query(ctx, "author = ? AND pages >= ?", "b", 150)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "two", found[0].Title)
}

func TestFindPage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	books := make([]*book, 0, 25)
	for i := 1; i <= 25; i++ {
		books = append(books, newBook(fmt.Sprintf("book-%02d", i), "serial", i))
	}
	_, err := repo.CreateMany(ctx, books)
	require.NoError(t, err)

	page, err := repo.FindPage(ctx, types.NewPageRequestWithOrders(3, 10, types.Ascending("pages")))
	require.NoError(t, err)
	require.Equal(t, 3, page.Page)
	require.Equal(t, 10, page.PageSize)
	require.Equal(t, 25, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 5)
	require.Equal(t, "book-21", page.Items[0].Title)
	require.False(t, page.HasNext())
}

func TestFindPageWithFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		author := "even"
		if i%2 == 1 {
			author = "odd"
		}
		_, err := repo.Create(ctx, newBook(fmt.Sprintf("b%d", i), author, i))
		require.NoError(t, err)
	}

	page, err := repo.FindPage(ctx, types.NewPageRequestWithFilter(1, 4, types.NewQueryFilter("author = ?", "even")))
	require.NoError(t, err)
	require.Equal(t, 6, page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 4)
	require.True(t, page.HasNext())
}

func TestFindPageEmptyTable(t *testing.T) {
	repo := newTestRepo(t)

	page, err := repo.FindPage(context.Background(), types.NewDefaultPageRequest(1, 10))
	require.NoError(t, err)
	require.Zero(t, page.Total)
	require.Zero(t, page.TotalPages)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
}

func TestUpdateByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newBook("old title", "a", 100))
	require.NoError(t, err)

	patch := &book{ID: created.ID, Title: "new title", Author: "a", Pages: 120, ISBN: created.ISBN}
	updated, err := repo.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, updated)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "new title", got.Title)
	require.Equal(t, 120, got.Pages)
}

func TestUpdateMissingRowReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	patch := newBook("ghost", "nobody", 0)
	updated, err := repo.Update(context.Background(), "no-such-id", patch)
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestUpdateManySequentialAbort(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := newBook("first", "a", 1)
	second := newBook("second", "a", 2)
	third := newBook("third", "a", 3)
	_, err := repo.CreateMany(ctx, []*book{first, second, third})
	require.NoError(t, err)

	first.Pages = 11
	second.Pages = 22
	second.ISBN = nil // violates NOT NULL, aborts the loop
	third.Pages = 33

	err = repo.UpdateMany(ctx, []*book{first, second, third})
	require.Error(t, err)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 11, got.Pages)

	got, err = repo.Get(ctx, third.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Pages)
}

func TestUpdateMany(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	books := []*book{newBook("a", "x", 1), newBook("b", "x", 2)}
	_, err := repo.CreateMany(ctx, books)
	require.NoError(t, err)

	books[0].Author = "updated"
	books[1].Author = "updated"
	require.NoError(t, repo.UpdateMany(ctx, books))

	count, err := repo.Count(ctx, types.NewQueryFilter("author = ?", "updated"))
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newBook("doomed", "a", 1))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	// deleting a missing row is not an error
	require.NoError(t, repo.Delete(ctx, "no-such-id"))
}

func TestDeleteMany(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	books := []*book{newBook("a", "x", 1), newBook("b", "x", 2), newBook("c", "x", 3)}
	_, err := repo.CreateMany(ctx, books)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteMany(ctx, []any{books[0].ID, books[2].ID}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "b", all[0].Title)

	require.NoError(t, repo.DeleteMany(ctx, nil))
}

func TestUpsertInsertsAndUpdates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	original := newBook("v1", "a", 100)
	_, err := repo.Create(ctx, original)
	require.NoError(t, err)

	conflicting := &book{ID: original.ID, Title: "v2", Author: "a", Pages: 200, ISBN: original.ISBN}
	fresh := newBook("brand new", "b", 50)

	err = repo.Upsert(ctx, []string{"title", "pages"}, []string{"id"}, conflicting, fresh)
	require.NoError(t, err)

	got, err := repo.Get(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Title)
	require.Equal(t, 200, got.Pages)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestUpsertDefaultsConflictToID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	original := newBook("v1", "a", 1)
	_, err := repo.Create(ctx, original)
	require.NoError(t, err)

	conflicting := &book{ID: original.ID, Title: "v2", Author: "a", Pages: 1, ISBN: original.ISBN}
	require.NoError(t, repo.Upsert(ctx, []string{"title"}, nil, conflicting))

	got, err := repo.Get(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Title)
}

func TestUpsertRequiresFields(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Upsert(context.Background(), nil, []string{"id"}, newBook("x", "y", 1))
	require.Error(t, err)
}

func TestExistsAndCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.CreateMany(ctx, []*book{
		newBook("a", "x", 10),
		newBook("b", "x", 20),
		newBook("c", "y", 30),
	})
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, types.NewQueryFilter("author = ?", "y"))
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, types.NewQueryFilter("author = ?", "nobody"))
	require.NoError(t, err)
	require.False(t, exists)

	count, err := repo.Count(ctx, types.NewQueryFilter("author = ?", "x"))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestWithTxCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository[book](db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	committed := newBook("committed", "tx", 1)
	require.NoError(t, repo.CreateWithTx(ctx, &tx, committed))
	require.NoError(t, tx.Commit())

	got, err := repo.Get(ctx, committed.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	rolledBack := newBook("rolled back", "tx", 2)
	require.NoError(t, repo.CreateWithTx(ctx, &tx, rolledBack))
	require.NoError(t, tx.Rollback())

	got, err = repo.Get(ctx, rolledBack.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

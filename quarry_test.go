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

package quarry_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/quarrydb/quarry"
	"github.com/quarrydb/quarry/database"
	"github.com/quarrydb/quarry/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID    string `bun:"id,pk"`
	Title string `bun:"title,notnull"`
	Body  string `bun:"body"`
	Stars int    `bun:"stars"`
}

func newNote(title string, stars int) *note {
	return &note{ID: uuid.NewString(), Title: title, Stars: stars}
}

func TestMain(m *testing.M) {
	database.RegisterModel(database.NewModel((*note)(nil), 1))

	cfg := &database.Config{
		Connection: database.ConnectionConfig{Type: "sqlite", DBName: ":memory:"},
		Migration:  database.MigrationConfig{Auto: true},
	}
	if _, err := database.InitDB(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "database init failed:", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func TestServiceCRUD(t *testing.T) {
	svc := quarry.NewService[note]()
	ctx := context.Background()

	saved, err := svc.Save(ctx, newNote("groceries", 0))
	require.NoError(t, err)

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "groceries", got.Title)

	got.Title = "groceries (urgent)"
	updated, err := svc.Update(ctx, got.ID, got)
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.NoError(t, svc.Delete(ctx, got.ID))

	got, err = svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestServiceFindAndPage(t *testing.T) {
	svc := quarry.NewService[note]()
	ctx := context.Background()

	notes := make([]*note, 0, 7)
	for i := 1; i <= 7; i++ {
		notes = append(notes, newNote(fmt.Sprintf("paged-%d", i), i))
	}
	_, err := svc.SaveMany(ctx, notes)
	require.NoError(t, err)
	defer func() {
		ids := make([]any, len(notes))
		for i, n := range notes {
			ids[i] = n.ID
		}
		require.NoError(t, svc.DeleteMany(ctx, ids))
	}()

	found, err := svc.Find(ctx, types.NewFindOptions(
		types.NewQueryFilter("title LIKE ?", "paged-%"),
		types.Descending("stars"),
	))
	require.NoError(t, err)
	require.Len(t, found, 7)
	require.Equal(t, 7, found[0].Stars)

	page, err := svc.FindPage(ctx, types.NewPageRequest(2, 3, types.NewFindOptions(
		types.NewQueryFilter("title LIKE ?", "paged-%"),
		types.Ascending("stars"),
	)))
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 3)
	require.Equal(t, 4, page.Items[0].Stars)
	require.True(t, page.HasNext())
}

func TestServiceSaveOrUpdate(t *testing.T) {
	svc := quarry.NewService[note]()
	ctx := context.Background()

	original := newNote("draft", 1)
	_, err := svc.Save(ctx, original)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Delete(ctx, original.ID)) }()

	conflicting := &note{ID: original.ID, Title: "published", Stars: 5}
	err = svc.SaveOrUpdate(ctx, []string{"title", "stars"}, []string{"id"}, conflicting)
	require.NoError(t, err)

	got, err := svc.Get(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, "published", got.Title)
	require.Equal(t, 5, got.Stars)
}

func TestServiceExistsCountAndBuilders(t *testing.T) {
	svc := quarry.NewService[note]()
	ctx := context.Background()

	saved, err := svc.Save(ctx, newNote("counted", 9))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Delete(ctx, saved.ID)) }()

	exists, err := svc.Exists(ctx, types.NewQueryFilter("stars = ?", 9))
	require.NoError(t, err)
	require.True(t, exists)

	count, err := svc.Count(ctx, types.NewQueryFilter("title = ?", "counted"))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var titles []string
	err = svc.SelectBuilder().
		Model((*note)(nil)).
		Column("title").
		Where("stars = ?", 9).
		Scan(ctx, &titles)
	require.NoError(t, err)
	require.Equal(t, []string{"counted"}, titles)
}

func TestServiceWithTransaction(t *testing.T) {
	svc := quarry.NewService[note]()
	ctx := context.Background()

	tx, err := database.GetDB().BeginTx(ctx, nil)
	require.NoError(t, err)

	rolledBack := newNote("never persisted", 0)
	require.NoError(t, svc.SaveWithTx(ctx, &tx, rolledBack))
	require.NoError(t, tx.Rollback())

	got, err := svc.Get(ctx, rolledBack.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGlobalHealthAndStats(t *testing.T) {
	status := database.GetHealthStatus(context.Background())
	require.True(t, status.Healthy)
	require.True(t, status.Connected)

	stats := database.GetStats()
	require.GreaterOrEqual(t, stats.OpenConns, 1)
}

func TestSeedWithoutFilesIsNoop(t *testing.T) {
	require.NoError(t, database.Seed("development"))
}

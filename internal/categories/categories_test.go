package categories_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Anasanas60/krishokbazar/internal/categories"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    icon TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func setup(t *testing.T) *categories.Conf {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	conf, err := categories.NewConf(db)
	require.NoError(t, err)
	return conf
}

func TestCategoryCRUD(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	created, err := conf.Insert(ctx, categories.NewCategory{
		Name:        "Vegetables",
		Description: "Fresh seasonal vegetables",
		Icon:        "🥕",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Fresh seasonal vegetables", *created.Description)

	bare, err := conf.Insert(ctx, categories.NewCategory{Name: "Fruits"})
	require.NoError(t, err)
	assert.Nil(t, bare.Description, "empty optional fields stay null")
	assert.Nil(t, bare.Icon)

	got, err := conf.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", got.Name)

	all, err := conf.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Fruits", all[0].Name, "sorted by name")

	updated, err := conf.Update(ctx, created.ID, categories.NewCategory{Name: "Veggies"})
	require.NoError(t, err)
	assert.Equal(t, "Veggies", updated.Name)
	assert.Nil(t, updated.Description)

	_, err = conf.Update(ctx, created.ID+100, categories.NewCategory{Name: "x"})
	require.ErrorIs(t, err, categories.ErrNotFound)

	require.NoError(t, conf.Delete(ctx, bare.ID))
	_, err = conf.GetByID(ctx, bare.ID)
	require.ErrorIs(t, err, categories.ErrNotFound)
	require.ErrorIs(t, conf.Delete(ctx, bare.ID), categories.ErrNotFound)
}

package users_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/users"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'consumer',
    phone TEXT,
    street TEXT,
    city TEXT,
    state TEXT,
    zip_code TEXT,
    profile_picture TEXT,
    lat REAL,
    lng REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE farmer_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL UNIQUE REFERENCES users (id),
    farm_name TEXT NOT NULL,
    farm_description TEXT,
    farm_location TEXT,
    years_farming INTEGER,
    certification TEXT,
    delivery_options TEXT NOT NULL DEFAULT '[]',
    payment_options TEXT NOT NULL DEFAULT '[]',
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    rating NUMERIC NOT NULL DEFAULT 0,
    total_ratings INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func setup(t *testing.T) *users.Conf {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	conf, err := users.NewConf(db)
	require.NoError(t, err)
	return conf
}

func TestInsertUser(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	user, err := conf.InsertUser(ctx, users.NewUser{
		Name:     "Rahim Uddin",
		Email:    "rahim@example.com",
		Password: "secret123",
		Phone:    "8801711111111",
		City:     "Dhaka",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, auth.RoleConsumer, user.Role, "role defaults to consumer")
	assert.NotEqual(t, "secret123", user.PasswordHash, "password must be hashed")
	require.NotNil(t, user.Phone)
	assert.Equal(t, "8801711111111", *user.Phone)
	assert.Nil(t, user.Street)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := conf.InsertUser(ctx, users.NewUser{
			Name:     "Other",
			Email:    "rahim@example.com",
			Password: "whatever1",
		})
		require.ErrorIs(t, err, users.ErrEmailTaken)
	})
}

func TestAuthenticate(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	created, err := conf.InsertUser(ctx, users.NewUser{
		Name:     "Salma Khatun",
		Email:    "salma@example.com",
		Password: "secret123",
		Role:     auth.RoleFarmer,
	})
	require.NoError(t, err)

	user, err := conf.Authenticate(ctx, users.Login{Email: "salma@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, auth.RoleFarmer, user.Role)

	_, err = conf.Authenticate(ctx, users.Login{Email: "salma@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, users.ErrInvalidCredentials)

	_, err = conf.Authenticate(ctx, users.Login{Email: "nobody@example.com", Password: "secret123"})
	require.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestListFarmers(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	_, err := conf.InsertUser(ctx, users.NewUser{Name: "c", Email: "c@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = conf.InsertUser(ctx, users.NewUser{Name: "f1", Email: "f1@example.com", Password: "secret123", Role: auth.RoleFarmer})
	require.NoError(t, err)
	_, err = conf.InsertUser(ctx, users.NewUser{Name: "f2", Email: "f2@example.com", Password: "secret123", Role: auth.RoleFarmer})
	require.NoError(t, err)

	farmers, err := conf.ListFarmers(ctx)
	require.NoError(t, err)
	assert.Len(t, farmers, 2)
	for _, f := range farmers {
		assert.Equal(t, auth.RoleFarmer, f.Role)
	}

	all, err := conf.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDelete(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	user, err := conf.InsertUser(ctx, users.NewUser{Name: "gone", Email: "gone@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, conf.Delete(ctx, user.ID))
	_, err = conf.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, users.ErrNotFound)

	require.ErrorIs(t, conf.Delete(ctx, user.ID), users.ErrNotFound)
}

func TestFarmerProfile(t *testing.T) {
	conf := setup(t)
	ctx := context.Background()

	farmer, err := conf.InsertUser(ctx, users.NewUser{
		Name: "Karim", Email: "karim@example.com", Password: "secret123", Role: auth.RoleFarmer,
	})
	require.NoError(t, err)
	consumer, err := conf.InsertUser(ctx, users.NewUser{
		Name: "Nila", Email: "nila@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	t.Run("MissingProfileIsNotAnError", func(t *testing.T) {
		got, profile, err := conf.GetFarmerProfile(ctx, farmer.ID)
		require.NoError(t, err)
		assert.Equal(t, farmer.ID, got.ID)
		assert.Nil(t, profile)
	})

	t.Run("NonFarmerHasNoProfilePage", func(t *testing.T) {
		_, _, err := conf.GetFarmerProfile(ctx, consumer.ID)
		require.ErrorIs(t, err, users.ErrNotFound)
	})

	years := 12
	created, err := conf.UpsertFarmerProfile(ctx, farmer.ID, users.UpdateFarmerProfile{
		FarmName:        "Karim's Farm",
		FarmDescription: "Vegetables year round",
		YearsFarming:    &years,
		DeliveryOptions: []string{"Pickup", "Delivery"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Karim's Farm", created.FarmName)
	require.NotNil(t, created.YearsFarming)
	assert.Equal(t, 12, *created.YearsFarming)
	assert.Equal(t, []string{"Pickup", "Delivery"}, created.DeliveryOptions)
	assert.Equal(t, []string{}, created.PaymentOptions)

	t.Run("UpsertReplacesExistingProfile", func(t *testing.T) {
		updated, err := conf.UpsertFarmerProfile(ctx, farmer.ID, users.UpdateFarmerProfile{
			FarmName:       "Green Karim Farm",
			PaymentOptions: []string{"Cash"},
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID, "update must not create a second row")
		assert.Equal(t, "Green Karim Farm", updated.FarmName)
		assert.Equal(t, []string{"Cash"}, updated.PaymentOptions)
	})
}

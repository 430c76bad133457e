// Package users manages marketplace accounts, credentials and farm profiles.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Anasanas60/krishokbazar/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const queryUserColumns = `
	SELECT id, name, email, password_hash, role, phone, street, city, state,
	       zip_code, profile_picture, lat, lng, created_at, updated_at
	FROM users
`

// InsertUser registers an account with a bcrypt password hash. The role
// defaults to consumer when the request does not name one.
func (c *Conf) InsertUser(ctx context.Context, nu NewUser) (*User, error) {
	var exists int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, nu.Email).Scan(&exists)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := nu.Role
	if role == "" {
		role = auth.RoleConsumer
	}

	now := time.Now().UTC()
	const queryInsert = `
		INSERT INTO users (name, email, password_hash, role, phone, street, city, state, zip_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id int64
	err = c.db.QueryRowContext(ctx, queryInsert,
		nu.Name, nu.Email, string(hash), role,
		nullable(nu.Phone), nullable(nu.Street), nullable(nu.City), nullable(nu.State), nullable(nu.ZipCode),
		now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return c.GetByID(ctx, id)
}

// Authenticate verifies the email/password pair and returns the account.
func (c *Conf) Authenticate(ctx context.Context, login Login) (*User, error) {
	user, err := c.getBy(ctx, `WHERE email = $1`, login.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(login.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (c *Conf) GetByID(ctx context.Context, id int64) (*User, error) {
	return c.getBy(ctx, `WHERE id = $1`, id)
}

// ListFarmers returns every account with the farmer role.
func (c *Conf) ListFarmers(ctx context.Context) ([]User, error) {
	return c.listBy(ctx, `WHERE role = $1`, auth.RoleFarmer)
}

// ListAll returns every account. Admin-only at the HTTP layer.
func (c *Conf) ListAll(ctx context.Context) ([]User, error) {
	return c.listBy(ctx, ``)
}

// Delete removes an account. Admin-only at the HTTP layer.
func (c *Conf) Delete(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetFarmerProfile returns the farm page for a farmer account, or ErrNotFound
// when the user does not exist or is not a farmer. A missing profile row is
// not an error; the profile result is nil in that case.
func (c *Conf) GetFarmerProfile(ctx context.Context, userID int64) (*User, *FarmerProfile, error) {
	farmer, err := c.getBy(ctx, `WHERE id = $1 AND role = $2`, userID, auth.RoleFarmer)
	if err != nil {
		return nil, nil, err
	}

	profile, err := c.profileByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, err
	}
	return farmer, profile, nil
}

// UpsertFarmerProfile creates or replaces the caller's farm page.
func (c *Conf) UpsertFarmerProfile(ctx context.Context, userID int64, up UpdateFarmerProfile) (*FarmerProfile, error) {
	deliveryOpts, err := json.Marshal(orEmpty(up.DeliveryOptions))
	if err != nil {
		return nil, fmt.Errorf("failed to encode delivery options: %w", err)
	}
	paymentOpts, err := json.Marshal(orEmpty(up.PaymentOptions))
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment options: %w", err)
	}

	now := time.Now().UTC()
	_, err = c.profileByUserID(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		const queryInsert = `
			INSERT INTO farmer_profiles (user_id, farm_name, farm_description, farm_location,
				years_farming, certification, delivery_options, payment_options, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = c.db.ExecContext(ctx, queryInsert,
			userID, up.FarmName, nullable(up.FarmDescription), nullable(up.FarmLocation),
			up.YearsFarming, nullable(up.Certification), string(deliveryOpts), string(paymentOpts), now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert farmer profile: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		const queryUpdate = `
			UPDATE farmer_profiles
			SET farm_name = $1, farm_description = $2, farm_location = $3, years_farming = $4,
			    certification = $5, delivery_options = $6, payment_options = $7, updated_at = $8
			WHERE user_id = $9
		`
		_, err = c.db.ExecContext(ctx, queryUpdate,
			up.FarmName, nullable(up.FarmDescription), nullable(up.FarmLocation), up.YearsFarming,
			nullable(up.Certification), string(deliveryOpts), string(paymentOpts), now, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to update farmer profile: %w", err)
		}
	}

	return c.profileByUserID(ctx, userID)
}

func (c *Conf) profileByUserID(ctx context.Context, userID int64) (*FarmerProfile, error) {
	const query = `
		SELECT id, user_id, farm_name, farm_description, farm_location, years_farming,
		       certification, delivery_options, payment_options, is_verified, rating,
		       total_ratings, created_at, updated_at
		FROM farmer_profiles
		WHERE user_id = $1
	`
	var (
		profile      FarmerProfile
		deliveryOpts []byte
		paymentOpts  []byte
	)
	err := c.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.FarmName, &profile.FarmDescription,
		&profile.FarmLocation, &profile.YearsFarming, &profile.Certification,
		&deliveryOpts, &paymentOpts, &profile.IsVerified, &profile.Rating,
		&profile.TotalRatings, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query farmer profile: %w", err)
	}

	profile.DeliveryOptions = []string{}
	profile.PaymentOptions = []string{}
	if len(deliveryOpts) > 0 {
		if err := json.Unmarshal(deliveryOpts, &profile.DeliveryOptions); err != nil {
			return nil, fmt.Errorf("failed to decode delivery options: %w", err)
		}
	}
	if len(paymentOpts) > 0 {
		if err := json.Unmarshal(paymentOpts, &profile.PaymentOptions); err != nil {
			return nil, fmt.Errorf("failed to decode payment options: %w", err)
		}
	}
	return &profile, nil
}

func (c *Conf) getBy(ctx context.Context, where string, args ...any) (*User, error) {
	row := c.db.QueryRowContext(ctx, queryUserColumns+" "+where, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (c *Conf) listBy(ctx context.Context, where string, args ...any) ([]User, error) {
	rows, err := c.db.QueryContext(ctx, queryUserColumns+" "+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.Phone, &user.Street, &user.City, &user.State, &user.ZipCode,
		&user.ProfilePicture, &user.Lat, &user.Lng, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(opts []string) []string {
	if opts == nil {
		return []string{}
	}
	return opts
}

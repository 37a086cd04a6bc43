package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// UserRepo provides CRUD over the `users` table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, first_name, last_name, phone, blood_group,
	user_type, location, availability, is_verified, lat, lng, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var phone, availability sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &phone,
		&u.BloodGroup, &u.UserType, &u.Location, &availability, &u.IsVerified,
		&u.Lat, &u.Lng, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Phone = phone.String
	u.Availability = availability.String
	return u, nil
}

// Create inserts a user and populates its generated ID and timestamps.
// Username and email collisions return ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, phone, blood_group,
			user_type, location, availability, is_verified, lat, lng, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.Username, u.Email, u.FirstName, u.LastName, nullStr(u.Phone), u.BloodGroup,
		u.UserType, u.Location, nullStr(u.Availability), u.IsVerified, u.Lat, u.Lng, now, now)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetByID fetches a user by id. Returns ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UserUpdate carries the partially-specified fields of a profile
// update. Nil pointers leave the column untouched.
type UserUpdate struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	Phone        *string
	BloodGroup   *string
	UserType     *string
	Location     *string
	Availability *string
	IsVerified   *bool
	Lat          *float64
	Lng          *float64
}

// Update applies a partial update and returns the stored row.
// ErrNotFound when the id does not exist; ErrDuplicate when a unique
// column collides.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	sets := make([]string, 0, 13)
	args := make([]any, 0, 14)
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Username != nil {
		add("username", strings.TrimSpace(*upd.Username))
	}
	if upd.Email != nil {
		add("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.BloodGroup != nil {
		add("blood_group", strings.ToUpper(strings.TrimSpace(*upd.BloodGroup)))
	}
	if upd.UserType != nil {
		add("user_type", *upd.UserType)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Availability != nil {
		add("availability", *upd.Availability)
	}
	if upd.IsVerified != nil {
		add("is_verified", *upd.IsVerified)
	}
	if upd.Lat != nil {
		add("lat", *upd.Lat)
	}
	if upd.Lng != nil {
		add("lng", *upd.Lng)
	}
	if len(sets) > 0 {
		add("updated_at", time.Now().UTC())
		args = append(args, id)
		_, err := r.db.ExecContext(ctx,
			`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
		if err != nil {
			if isDuplicateErr(err) {
				return model.User{}, ErrDuplicate
			}
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

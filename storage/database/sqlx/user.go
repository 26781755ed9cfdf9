package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{repository{db: db}}
}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (repo userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unrow(r userRow) user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive.Ptr(),
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)

	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	query += `)`

	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	var exists bool
	if err = sqlx.GetContext(ctx, ext, &exists, ext.Rebind(q), inArgs...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	r := repo.row(usr)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Name, r.Username, r.Email, r.IsActive, r.Roles, r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	ext := repo.getExec(exec)

	var cond string
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		cond, args = "id = ?", []interface{}{filter.ID}
	case filter.Username != "":
		cond, args = "username = ?", []interface{}{filter.Username}
	case filter.Email != "":
		cond, args = "email = ?", []interface{}{filter.Email}
	case filter.UsernameOrEmail != nil:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		cond, args = "(username = ? OR email = ?)", []interface{}{uname, email}
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	err := sqlx.GetContext(ctx, ext, &r, ext.Rebind(`SELECT * FROM "user" WHERE `+cond), args...)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unrow(r), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, "(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)")
			args = append(args, val, val, val)
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roleConds := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleConds = append(roleConds, "EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE ?)")
				args = append(args, role+"%")
			}
			conds = append(conds, "("+joinOr(roleConds)+")")
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	query := `SELECT * FROM "user"` + whereClause(conds) + orderClause(ordering)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, repo.unrow(r))
	}
	return users, nil
}

// UpdateUser only persists the set fields; Name, Username, Email and
// UpdatedAt are always written.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	r := repo.row(usr)

	sets := []string{"name = ?", "username = ?", "email = ?", "updated_at = ?"}
	args := []interface{}{r.Name, r.Username, r.Email, r.UpdatedAt}
	if usr.Roles != nil {
		sets = append(sets, "roles = ?")
		args = append(args, r.Roles)
	}
	if usr.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, r.PasswordHash)
	}
	if usr.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, r.IsActive)
	}
	if !usr.LastLogin.IsZero() {
		sets = append(sets, "last_login = ?")
		args = append(args, r.LastLogin)
	}
	args = append(args, r.ID)

	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind(`UPDATE "user" SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.GetUser(ctx, user.GetFilter{ID: r.ID}, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := execIn(ctx, repo.getExec(exec), `DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func joinOr(conds []string) string {
	out := ""
	for i, c := range conds {
		if i > 0 {
			out += " OR "
		}
		out += c
	}
	return out
}

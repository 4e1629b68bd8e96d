package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/repository/builder"
)

const userRoleTable = "user_roles"

// RoleRepository reads and writes the user_roles mapping
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new instance of RoleRepository
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetRole returns the stored role for userID. A missing row or a blank role
// reports found=false; neither is an error.
func (r *RoleRepository) GetRole(ctx context.Context, userID string) (string, bool, error) {
	query, args := builder.NewSQLBuilder().
		Select("role").
		From(userRoleTable).
		Where("user_id = ?", userID).
		Build()

	var role string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, storeErr(ctx, "get role", err)
	}
	if strings.TrimSpace(role) == "" {
		return "", false, nil
	}
	return role, true, nil
}

// SetRole upserts the role for userID.
func (r *RoleRepository) SetRole(ctx context.Context, userID, role string) error {
	query, args := builder.NewSQLBuilder().
		Insert(userRoleTable, "user_id", "role").
		Values(userID, role).
		OnConflict("(user_id) DO UPDATE SET role = EXCLUDED.role").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return storeErr(ctx, "set role", err)
	}
	return nil
}

var _ domain.RoleRepository = (*RoleRepository)(nil)

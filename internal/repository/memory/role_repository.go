package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errDuplicateKey = errors.New(`duplicate key value violates unique constraint "employees_pkey"`)

type RoleRepository struct {
	mu    sync.RWMutex
	roles map[string]string
	err   error
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{roles: map[string]string{}}
}

// Fail makes every following lookup return err.
func (r *RoleRepository) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *RoleRepository) GetRole(_ context.Context, userID string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return "", false, r.err
	}
	role, ok := r.roles[userID]
	if strings.TrimSpace(role) == "" {
		return "", false, nil
	}
	return role, ok, nil
}

func (r *RoleRepository) SetRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = role
	return nil
}

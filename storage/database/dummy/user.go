package dummydb

import (
	"context"
	"sort"

	"github.com/bths-repair/bths-repair-the-world/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.Email]; ok {
		return user.User{}, user.ErrEmailExists
	}
	repo.db.table[usr.Email] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[email]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.Email]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.table[usr.Email] = &usr
	return usr, nil
}

func (repo *userRepository) QueryReferrals(ctx context.Context, email string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var refs []string
	for _, usr := range repo.db.table {
		if usr.ReferredBy == email {
			refs = append(refs, usr.Email)
		}
	}
	sort.Strings(refs)
	return refs, nil
}

func (repo *userRepository) SetEmailVerified(ctx context.Context, email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[email]
	if !ok {
		return user.ErrNotFound
	}
	usr.EmailVerified = true
	return nil
}

func (repo *userRepository) SetPosition(ctx context.Context, email string, pos user.Position) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[email]
	if !ok {
		return user.ErrNotFound
	}
	usr.Position = pos
	return nil
}

// Package seed creates bootstrap accounts from a YAML file. It is the only
// way to obtain the first ADMIN.
//
//	users:
//	  - username: root
//	    password: change-me
//	    role: ADMIN
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

type Account struct {
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
	Fullname string      `yaml:"fullname"`
	Email    string      `yaml:"email"`
}

type usersFile struct {
	Users []Account `yaml:"users"`
}

// LoadFile parses path. Entries without a role become USER.
func LoadFile(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i := range uf.Users {
		if uf.Users[i].Role == "" {
			uf.Users[i].Role = domain.RoleUser
		}
		if !uf.Users[i].Role.Valid() {
			return nil, fmt.Errorf("seed file %s: user %q has unknown role %q", path, uf.Users[i].Username, uf.Users[i].Role)
		}
	}
	return uf.Users, nil
}

// Apply creates the accounts that do not exist yet and returns how many were
// created. Existing accounts are left untouched.
func Apply(ctx context.Context, store ports.Store, hasher ports.PasswordHasher, accounts []Account, log zerolog.Logger) (int, error) {
	created := 0
	for _, a := range accounts {
		if a.Username == "" || a.Password == "" {
			log.Warn().Str("username", a.Username).Msg("seed entry without username or password skipped")
			continue
		}

		_, err := store.Users().FindByUsername(ctx, a.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return created, err
		}

		hash, err := hasher.Hash(a.Password)
		if err != nil {
			return created, fmt.Errorf("hash seed password for %q: %w", a.Username, err)
		}
		now := time.Now().UTC()
		_, err = store.Users().Create(ctx, &domain.User{
			Username:     a.Username,
			PasswordHash: hash,
			Fullname:     a.Fullname,
			Email:        a.Email,
			Role:         a.Role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		// lost a race with another instance
		if errors.Is(err, domain.ErrUserExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create seed user %q: %w", a.Username, err)
		}
		created++
		log.Info().Str("username", a.Username).Str("role", string(a.Role)).Msg("seed account created")
	}
	return created, nil
}

// FromFile loads path and applies it.
func FromFile(ctx context.Context, path string, store ports.Store, hasher ports.PasswordHasher, log zerolog.Logger) (int, error) {
	accounts, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	return Apply(ctx, store, hasher, accounts, log)
}

package repository

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/auth"
	"github.com/PhelGc/fieldops/internal/incident"
)

var (
	ErrUserExists         = errors.New("el usuario ya existe")
	ErrProtectedUser      = errors.New("el administrador principal no se puede eliminar")
	ErrInvalidCredentials = errors.New("usuario o contraseña inválidos")
)

// Users cuentas registradas
func (r *Repository) Users() []incident.UserAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]incident.UserAccount(nil), r.users...)
}

// AddUser crea un usuario; la contraseña se guarda como hash bcrypt
func (r *Repository) AddUser(ctx context.Context, username, password string) (incident.UserAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return incident.UserAccount{}, ErrEmptyName
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return incident.UserAccount{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return incident.UserAccount{}, ErrUserExists
		}
	}

	user := incident.UserAccount{ID: r.opts.NewID(), Username: username, PasswordHash: hash}
	next := append(append([]incident.UserAccount(nil), r.users...), user)
	if err := r.write(ctx, KeyUsers, next); err != nil {
		return incident.UserAccount{}, err
	}
	r.users = next
	return user, nil
}

// RemoveUser elimina un usuario por id, salvo el administrador principal
func (r *Repository) RemoveUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id && u.Username == r.opts.AdminUsername {
			return ErrProtectedUser
		}
	}

	next, ok := without(r.users, func(u incident.UserAccount) bool { return u.ID == id })
	if !ok {
		return ErrEntryNotFound
	}
	if err := r.write(ctx, KeyUsers, next); err != nil {
		return err
	}
	r.users = next
	return nil
}

// Authenticate valida usuario y contraseña contra la lista local
func (r *Repository) Authenticate(username, password string) (incident.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username && auth.CheckPassword(u.PasswordHash, password) {
			return u, nil
		}
	}

	r.opts.Logger.Warn("Intento de acceso fallido", zap.String("username", username))
	return incident.UserAccount{}, ErrInvalidCredentials
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider — источник, через который создана учётная запись.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User — модель пользователя в системе.
//
// PasswordHash пуст для аккаунтов, созданных внешним провайдером, —
// такие пользователи не могут входить по паролю. Удаление только мягкое
// (IsDeleted); уникальность email действует среди неудалённых записей.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	IsSuperadmin bool
	IsDeleted    bool
	AuthProvider AuthProvider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

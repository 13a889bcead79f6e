package models

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

/************************************************
/**** MARK: USER ROLES ****/
/************************************************/
const USER_ROLE_OPERATOR = "operator"
const USER_ROLE_AUXILIAR = "auxiliar"
const USER_ROLE_MANAGER = "manager"
const USER_ROLE_ADMIN = "admin"

/************************************************
/**** MARK: USER STATUS ****/
/************************************************/
const USER_STATUS_AVAILABLE = 0
const USER_STATUS_PENDING = 1
const USER_STATUS_BLOCKED = 2

// User é o operador do back-office. O ID vai nos checkpoints e fechamentos
// como autor da ação.
type User struct {
	ID           string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID     string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name         string     `gorm:"not null" json:"name" form:"name"`
	Email        string     `gorm:"not null;unique" json:"email" form:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         string     `gorm:"not null;default:'operator'" json:"role" form:"role"`
	Status       int        `gorm:"default:0" json:"status" form:"status"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// NewUser valida os campos obrigatórios e grava o hash bcrypt da senha.
func NewUser(tenantID, name, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case strings.TrimSpace(tenantID) == "":
		return User{}, errors.New("tenant_id é obrigatório")
	case strings.TrimSpace(name) == "":
		return User{}, errors.New("name é obrigatório")
	case email == "":
		return User{}, errors.New("email é obrigatório")
	case len(password) < 6:
		return User{}, errors.New("password deve ter ao menos 6 caracteres")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           NewID(),
		TenantID:     tenantID,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         USER_ROLE_OPERATOR,
		Status:       USER_STATUS_AVAILABLE,
	}, nil
}

func (user User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (user User) IsAdmin() bool {
	return user.Role == USER_ROLE_ADMIN
}

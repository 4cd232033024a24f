package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oakhurst-kitchen/ordering-backend/config"
	"github.com/oakhurst-kitchen/ordering-backend/models"
	"github.com/oakhurst-kitchen/ordering-backend/utils"
)

// ErrInvalidCredentials is returned for any failed login attempt; callers
// must not distinguish unknown account from wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session identifies an authenticated operator.
type Session struct {
	AdminID uint
	Subject string
	Role    string
}

// Authenticator is the single login strategy, selected once at startup.
type Authenticator interface {
	Authenticate(identifier, password string) (*Session, error)
}

// SelectAuthenticator picks the strategy: database accounts when any exist,
// otherwise the deprecated shared env password (migration seam only).
func SelectAuthenticator(db *gorm.DB, s config.Settings) Authenticator {
	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	if count > 0 {
		return &DBAuthenticator{db: db}
	}
	if s.AdminPassword != "" {
		utils.InfoLogger.Println("no admin accounts found, using env-password authentication (deprecated)")
		return &EnvAuthenticator{password: s.AdminPassword}
	}
	return &DBAuthenticator{db: db}
}

// DBAuthenticator verifies against AdminUser rows by email or username.
type DBAuthenticator struct {
	db *gorm.DB
}

func (a *DBAuthenticator) Authenticate(identifier, password string) (*Session, error) {
	var admin models.AdminUser
	err := a.db.Where("email = ? OR username = ?", identifier, identifier).First(&admin).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !admin.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	a.db.Model(&admin).UpdateColumn("last_login_at", now)

	return &Session{AdminID: admin.ID, Subject: admin.Email, Role: admin.Role}, nil
}

// EnvAuthenticator accepts a single shared password from the environment.
//
// Deprecated: exists only so a fresh install can be administered before the
// first AdminUser row is created.
type EnvAuthenticator struct {
	password string
}

func (a *EnvAuthenticator) Authenticate(identifier, password string) (*Session, error) {
	if a.password == "" || password != a.password {
		return nil, ErrInvalidCredentials
	}
	return &Session{AdminID: 0, Subject: "env-admin", Role: models.RoleSuperAdmin}, nil
}

// Package user defines the diner account entity
package user

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email too long")
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name must not exceed 100 characters")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// Preferences are the diner's saved meal preferences.
type Preferences struct {
	CuisineType      string   `json:"cuisine_type,omitempty"`
	MealType         string   `json:"meal_type,omitempty"`
	SpiceLevel       int      `json:"spice_level,omitempty"`
	PreferredProtein []string `json:"preferred_protein,omitempty"`
}

// User represents a diner account
type User struct {
	id                  uint
	email               string
	name                string
	passwordHash        string
	isActive            bool
	dietaryRestrictions []string
	preferences         Preferences
	createdAt           time.Time
}

// NewUser creates a new active user, hashing the password with bcrypt.
func NewUser(email, name, password string, restrictions []string, prefs Preferences) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	return &User{
		email:               strings.ToLower(strings.TrimSpace(email)),
		name:                strings.TrimSpace(name),
		passwordHash:        string(hashedPassword),
		isActive:            true,
		dietaryRestrictions: append([]string(nil), restrictions...),
		preferences:         prefs,
		createdAt:           time.Now(),
	}, nil
}

// Reconstitute rebuilds a user from storage without re-validating or re-hashing.
func Reconstitute(id uint, email, name, passwordHash string, active bool, restrictions []string, prefs Preferences, createdAt time.Time) *User {
	return &User{
		id:                  id,
		email:               email,
		name:                name,
		passwordHash:        passwordHash,
		isActive:            active,
		dietaryRestrictions: restrictions,
		preferences:         prefs,
		createdAt:           createdAt,
	}
}

func (u *User) ID() uint                      { return u.id }
func (u *User) Email() string                 { return u.email }
func (u *User) Name() string                  { return u.name }
func (u *User) PasswordHash() string          { return u.passwordHash }
func (u *User) IsActive() bool                { return u.isActive }
func (u *User) DietaryRestrictions() []string { return append([]string(nil), u.dietaryRestrictions...) }
func (u *User) Preferences() Preferences      { return u.preferences }
func (u *User) CreatedAt() time.Time          { return u.createdAt }

// AssignID is called by the repository once the row has a primary key.
func (u *User) AssignID(id uint) {
	u.id = id
}

// CheckPassword verifies the password against the stored hash
func (u *User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// Deactivate disables the account.
func (u *User) Deactivate() {
	u.isActive = false
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if len(email) > 255 {
		return ErrEmailTooLong
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		// bcrypt ignores anything past 72 bytes
		return ErrPasswordTooLong
	}
	return nil
}

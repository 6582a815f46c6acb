package devbackend

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/pos-frontend/internal/domain"
)

// ErrInvalidCredentials is returned for an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound is returned when a subject no longer exists.
var ErrUserNotFound = errors.New("user not found")

// User is a development operator account.
type User struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// Directory holds the development accounts in memory.
type Directory struct {
	mu        sync.RWMutex
	byID      map[string]*User
	byEmail   map[string]*User
	cost      int
	dummyHash []byte
}

// LoadDirectory reads accounts from a YAML file.
func LoadDirectory(path string, bcryptCost int) (*Directory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var file usersFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return NewDirectory(file.Users, bcryptCost)
}

// NewDirectory indexes users. Plain passwords are hashed; users without an id get one.
func NewDirectory(users []User, bcryptCost int) (*Directory, error) {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := HashPassword(uuid.NewString(), bcryptCost)
	if err != nil {
		return nil, err
	}

	d := &Directory{
		byID:      make(map[string]*User, len(users)),
		byEmail:   make(map[string]*User, len(users)),
		cost:      bcryptCost,
		dummyHash: []byte(dummy),
	}
	for i := range users {
		u := users[i]
		u.Email = normalizeEmail(u.Email)
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: email required", i)
		}
		if _, dup := d.byEmail[u.Email]; dup {
			return nil, fmt.Errorf("user %d: duplicate email %s", i, u.Email)
		}
		if !domain.ParseRole(u.Role).Known() {
			return nil, fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.PasswordHash == "" {
			if u.Password == "" {
				return nil, fmt.Errorf("user %s: password or password_hash required", u.Email)
			}
			hash, err := HashPassword(u.Password, bcryptCost)
			if err != nil {
				return nil, err
			}
			u.PasswordHash = hash
		}
		u.Password = ""
		d.byID[u.ID] = &u
		d.byEmail[u.Email] = &u
	}
	return d, nil
}

// Authenticate checks credentials. Unknown emails still pay for a bcrypt compare.
func (d *Directory) Authenticate(email, password string) (User, error) {
	d.mu.RLock()
	user, ok := d.byEmail[normalizeEmail(email)]
	var hash []byte
	if ok {
		hash = []byte(user.PasswordHash)
	}
	d.mu.RUnlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return d.Get(user.ID)
}

// Get returns a copy of the user with id.
func (d *Directory) Get(id string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

// Update applies non-empty profile fields to the user.
func (d *Directory) Update(id string, update domain.ProfileUpdate) error {
	var hash string
	if update.Password != "" {
		h, err := HashPassword(update.Password, d.cost)
		if err != nil {
			return err
		}
		hash = h
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	if update.Email != "" {
		email := normalizeEmail(update.Email)
		if other, taken := d.byEmail[email]; taken && other.ID != id {
			return fmt.Errorf("email %s already in use", email)
		}
		delete(d.byEmail, user.Email)
		user.Email = email
		d.byEmail[email] = user
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	if hash != "" {
		user.PasswordHash = hash
	}
	return nil
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

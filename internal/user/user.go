package user

import (
	"fmt"
	"sync"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

//--
// Data model objects and persistence mocks:
//--

// Record is a stored account: the public user plus its password.
// Passwords stay in the clear here, this store backs a development
// fixture server, not production traffic.
type Record struct {
	model.User
	Password string
}

// FieldError is a validation failure attributable to one request
// field, rendered to clients as `{"errors": {field: [message]}}`.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Store is an in-memory account store.
type Store struct {
	mu         sync.Mutex
	byUsername map[string]*Record
	byEmail    map[string]*Record
}

func NewStore() *Store {
	return &Store{
		byUsername: make(map[string]*Record),
		byEmail:    make(map[string]*Record),
	}
}

// Seed installs fixture accounts for development and tests.
func (s *Store) Seed() {
	fixtures := []*Record{
		{User: model.User{Username: "peter", Email: "peter@example.com", Bio: "first fixture"}, Password: "secret"},
		{User: model.User{Username: "julia", Email: "julia@example.com"}, Password: "secret"},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range fixtures {
		s.byUsername[record.Username] = record
		s.byEmail[record.Email] = record
	}
}

// Register creates an account, rejecting duplicate usernames and
// emails with field-level errors.
func (s *Store) Register(username, email, password string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, &FieldError{Field: "username", Message: "has already been taken"}
	}
	if _, exists := s.byEmail[email]; exists {
		return nil, &FieldError{Field: "email", Message: "has already been taken"}
	}

	record := &Record{
		User:     model.User{Username: username, Email: email},
		Password: password,
	}
	s.byUsername[username] = record
	s.byEmail[email] = record

	return record, nil
}

// Authenticate resolves an email/password pair to its account.
func (s *Store) Authenticate(email, password string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byEmail[email]
	if !ok || record.Password != password {
		return nil, &FieldError{Field: "email or password", Message: "is invalid"}
	}

	return record, nil
}

// Get returns the account for username.
func (s *Store) Get(username string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byUsername[username]

	return record, ok
}

// Update applies the non-empty fields to the account, re-indexing on
// username or email change.
func (s *Store) Update(username string, fields model.UserUpdate) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byUsername[username]
	if !ok {
		return nil, &FieldError{Field: "username", Message: "not found"}
	}

	if fields.Username != "" && fields.Username != record.Username {
		if _, exists := s.byUsername[fields.Username]; exists {
			return nil, &FieldError{Field: "username", Message: "has already been taken"}
		}
		delete(s.byUsername, record.Username)
		record.Username = fields.Username
		s.byUsername[record.Username] = record
	}

	if fields.Email != "" && fields.Email != record.Email {
		if _, exists := s.byEmail[fields.Email]; exists {
			return nil, &FieldError{Field: "email", Message: "has already been taken"}
		}
		delete(s.byEmail, record.Email)
		record.Email = fields.Email
		s.byEmail[record.Email] = record
	}

	if fields.Password != "" {
		record.Password = fields.Password
	}
	if fields.Bio != "" {
		record.Bio = fields.Bio
	}
	if fields.Image != "" {
		record.Image = fields.Image
	}

	return record, nil
}

package user

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.Issue("peter")
	if err != nil {
		t.Fatal(err)
	}

	username, err := issuer.Verify(token)
	assert.Equal(t, err, nil)
	assert.Equal(t, username, "peter")
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenIssuer("secret").Issue("peter")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenIssuer("other").Verify(token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestTokenExpiryEnforced(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.Issue("peter")
	if err != nil {
		t.Fatal(err)
	}

	issuer.clock = func() time.Time {
		return time.Now().Add(issuer.ttl + time.Hour)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expected expired token rejection")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := NewStore()

	if _, err := s.Register("peter", "peter@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	_, err := s.Register("peter", "other@example.com", "secret")
	fieldErr, ok := err.(*FieldError)
	assert.Equal(t, ok, true)
	assert.Equal(t, fieldErr.Field, "username")

	_, err = s.Register("other", "peter@example.com", "secret")
	fieldErr, ok = err.(*FieldError)
	assert.Equal(t, ok, true)
	assert.Equal(t, fieldErr.Field, "email")
}

func TestAuthenticate(t *testing.T) {
	s := NewStore()
	s.Seed()

	record, err := s.Authenticate("peter@example.com", "secret")
	assert.Equal(t, err, nil)
	assert.Equal(t, record.Username, "peter")

	if _, err := s.Authenticate("peter@example.com", "wrong"); err == nil {
		t.Fatal("expected rejection")
	}
	if _, err := s.Authenticate("stranger@example.com", "secret"); err == nil {
		t.Fatal("expected rejection")
	}
}

func TestUpdateReindexesUsernameAndEmail(t *testing.T) {
	s := NewStore()
	s.Seed()

	updated, err := s.Update("peter", model.UserUpdate{
		Username: "pete",
		Email:    "pete@example.com",
		Bio:      "renamed",
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, updated.Username, "pete")
	assert.Equal(t, updated.Bio, "renamed")

	if _, ok := s.Get("peter"); ok {
		t.Fatal("old username should be gone")
	}
	if _, ok := s.Get("pete"); !ok {
		t.Fatal("new username should resolve")
	}

	if _, err := s.Authenticate("pete@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
}

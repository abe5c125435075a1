package credstore

import (
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()

	if _, ok, _ := s.Get("userToken"); ok {
		t.Fatal("fresh store must be empty")
	}

	if err := s.Set("userToken", "abc"); err != nil {
		t.Fatal(err)
	}

	value, ok, err := s.Get("userToken")
	assert.Equal(t, err, nil)
	assert.Equal(t, ok, true)
	assert.Equal(t, value, "abc")

	if err := s.Remove("userToken"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("userToken"); ok {
		t.Fatal("value should be removed")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	first := NewFileStore(path)
	if err := first.Set("userToken", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := first.Set("userInfo", `{"username":"peter"}`); err != nil {
		t.Fatal(err)
	}

	// A fresh instance reading the same path sees the same blob.
	second := NewFileStore(path)

	token, ok, err := second.Get("userToken")
	assert.Equal(t, err, nil)
	assert.Equal(t, ok, true)
	assert.Equal(t, token, "abc")

	info, ok, _ := second.Get("userInfo")
	assert.Equal(t, ok, true)
	assert.Equal(t, info, `{"username":"peter"}`)
}

func TestFileStoreRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)

	if err := s.Set("userToken", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("userToken"); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := s.Get("userToken"); ok {
		t.Fatal("value should be removed")
	}
}

func TestFileStoreMissingFileReadsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	_, ok, err := s.Get("userToken")
	assert.Equal(t, err, nil)
	assert.Equal(t, ok, false)
}

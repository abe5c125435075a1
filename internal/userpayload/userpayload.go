package userpayload

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

//--
// Request and Response payloads for the user endpoints.
//
// The payloads embed the data model objects and add the `{"user": ...}`
// envelope the wire format requires.
//--

// UserFields is the union of fields a client can send on register,
// login, and profile update. Each handler validates the subset it
// needs.
type UserFields struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// UserRequest is the request envelope for all user endpoints.
type UserRequest struct {
	User *UserFields `json:"user"`
}

// Bind on UserRequest will run after the unmarshalling is complete,
// its a good time to focus some post-processing after a decoding.
func (u *UserRequest) Bind(r *http.Request) error {
	// u.User is nil if no user fields are sent in the request. Return an
	// error to avoid a nil pointer dereference.
	if u.User == nil {
		return errors.New("missing required user fields.")
	}

	u.User.Username = strings.TrimSpace(u.User.Username)
	u.User.Email = strings.TrimSpace(strings.ToLower(u.User.Email))

	return nil
}

// UserResponse is the response envelope for all user endpoints.
type UserResponse struct {
	User *model.User `json:"user"`
}

func NewUserResponse(user *model.User) *UserResponse {
	return &UserResponse{User: user}
}

func (u *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

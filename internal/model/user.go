package model

// User is the authenticated account as returned by the API. Token is
// present on login/register/update responses and absent on embedded
// author summaries.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
	Token    string `json:"token,omitempty"`
}

// UserEnvelope is the `{"user": ...}` wrapper used by all user
// requests and responses.
type UserEnvelope struct {
	User User `json:"user"`
}

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate carries the editable profile fields. Zero-valued fields
// are omitted from the request and left untouched by the server.
type UserUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
}

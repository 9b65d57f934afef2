package handler

import "time"

// Interactive endpoints bind classic form fields; the token endpoint is
// JSON-only. Field names mirror the forms the UI posts.

type registerRequest struct {
	Username string `form:"UserName" json:"username" validate:"required,max=64"`
	Email    string `form:"Email"    json:"email"    validate:"required,email"`
	Password string `form:"Password" json:"password" validate:"required"`
}

type loginRequest struct {
	Username   string `form:"UserName"   json:"username" validate:"required"`
	Password   string `form:"Password"   json:"password" validate:"required"`
	RememberMe bool   `form:"RememberMe" json:"remember_me"`
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

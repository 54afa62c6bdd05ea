package model

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the cached summary of the signed-in doctor. The server stays the
// source of truth for anything role gated.
type User struct {
	ID               ID      `json:"id"`
	Role             string  `json:"role"`
	Email            string  `json:"email"`
	Image            *string `json:"image"`
	FullName         string  `json:"full_name"`
	Gender           string  `json:"gender,omitempty"`
	DOB              *string `json:"dob"`
	IsVerifiedDoctor bool    `json:"is_verified_doctor"`
}

// Session is the credential pair together with the user it belongs to.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

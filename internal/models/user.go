package models

// Roles as reported by the store API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account record.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is the verified owner of a bearer token.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// IsAdmin reports whether the identity carries the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// SignInForm is the sign-in payload.
type SignInForm struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=20,pwcomplex"`
}

// SignUpForm is the registration payload.
type SignUpForm struct {
	Name       string `json:"name" form:"name" binding:"required,min=5,max=15"`
	Email      string `json:"email" form:"email" binding:"required,email"`
	Password   string `json:"password" form:"password" binding:"required,min=6,max=15"`
	RePassword string `json:"rePassword" form:"rePassword" binding:"required,eqfield=Password"`
	Phone      string `json:"phone" form:"phone" binding:"required,egphone"`
}

// ProfileForm is the account update payload.
type ProfileForm struct {
	Name  string `json:"name" form:"name" binding:"required,min=3"`
	Email string `json:"email" form:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty" form:"phone" binding:"omitempty,egphone"`
}

// PasswordForm is the change-password payload.
type PasswordForm struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm" binding:"required,eqfield=Password"`
}

// AuthResult is the response of sign-in, sign-up and password change.
type AuthResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

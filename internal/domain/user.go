package domain

import "time"

// User es el registro persistido de una cuenta.
// Invariante: Otp y OtpRequestedAt están ambos presentes o ambos ausentes;
// ResetFlag es true solo mientras exista un OTP sin consumir.
type User struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	ResetFlag      bool       `json:"-"`
	Otp            *string    `json:"-"`
	OtpRequestedAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PublicUser es la proyección que se devuelve a clientes.
type PublicUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Public devuelve la proyección sin credenciales del usuario.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

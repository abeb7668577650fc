package auth

// Claims es la identidad verificada del usuario.
type Claims struct {
	UserID string
	Email  string
}

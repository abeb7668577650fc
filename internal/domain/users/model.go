package users

import "time"

// User es el perfil local de un usuario del proveedor de identidad.
// El ID es el del proveedor (uid), no se genera aquí.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

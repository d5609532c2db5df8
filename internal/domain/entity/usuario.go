package entity

import "time"

// Roles de la aplicación.
const (
	RolAdmin    = "admin"
	RolAlmacen  = "almacenista"
	RolConsulta = "consulta"
)

// Usuario cuenta de acceso a la API.
type Usuario struct {
	ID           string
	Nombre       string
	Email        string
	PasswordHash string
	Rol          string
	CreatedAt    time.Time
}

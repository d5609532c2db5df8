package entity

import "time"

// Cliente es la contraparte de una salida (cliente o departamento interno).
// Catálogo externo a este subsistema; aquí solo se valida existencia.
type Cliente struct {
	ID        string
	Nombre    string
	RFC       string
	Telefono  string
	Email     string
	CreatedAt time.Time
}

package authz

// RolePolicy colaborador de autorización por capacidades: responde si un rol
// puede ejecutar una acción de un módulo. Las mutaciones privilegiadas lo
// consultan una sola vez por operación.
type RolePolicy struct {
	grants map[string]map[string]bool // rol -> "modulo/accion"
}

// NewRolePolicy política por defecto del almacén: solo admin puede alterar
// folios o fechas de documentos ya emitidos; admin y almacenista operan
// salidas.
func NewRolePolicy() *RolePolicy {
	return &RolePolicy{grants: map[string]map[string]bool{
		"admin": {
			"salidas/create":     true,
			"salidas/edit":       true,
			"salidas/delete":     true,
			"salidas/folio_edit": true,
		},
		"almacenista": {
			"salidas/create": true,
			"salidas/edit":   true,
			"salidas/delete": true,
		},
	}}
}

// CanPerform reporta si el rol tiene la capacidad modulo/accion.
func (p *RolePolicy) CanPerform(rol, modulo, accion string) bool {
	caps, ok := p.grants[rol]
	if !ok {
		return false
	}
	return caps[modulo+"/"+accion]
}

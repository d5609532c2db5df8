package entity

import "time"

// FolioConfig es el consecutivo de folios por tipo de movimiento
// (ej. "salida"). ProximoFolio siempre debe quedar por encima del máximo
// folio numérico en uso para esa serie; Reconcile lo repara sin retroceder.
type FolioConfig struct {
	ID           string
	Tipo         string
	SerieActual  string
	ProximoFolio int64
	UpdatedAt    time.Time
}

package models

import "time"

// Equipment is one biomedical device in the roster. Rows are maintained by an
// external inventory process; this API serves read-only views.
type Equipment struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"nombre" json:"nombre"`
	Brand        string    `db:"marca" json:"marca"`
	Model        string    `db:"modelo" json:"modelo"`
	SerialNumber string    `db:"numero_serie" json:"numero_serie"`
	Location     string    `db:"ubicacion" json:"ubicacion"`
	City         string    `db:"ciudad" json:"ciudad"`
	RiskClass    string    `db:"clase_riesgo" json:"clase_riesgo"`
	Status       string    `db:"estado" json:"estado"`
	ImageURL     *string   `db:"imagen_url" json:"imagen_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

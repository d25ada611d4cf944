package dto

// ListResponse envoltorio de listados: total + items.
type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// NewList arma la respuesta de listado (nunca items null).
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Total: len(items), Items: items}
}

// SettingsListRequest body para PUT /api/settings/:list.
type SettingsListRequest struct {
	Values []string `json:"values" validate:"dive,max=100"`
}

// ErrorResponse cuerpo de error HTTP. Code es la clave del rechazo (p. ej. INSUFFICIENT_STOCK);
// Params trae los valores para que el cliente arme el mensaje traducido.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

package types

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorData carries the underlying failure text on 5xx responses.
type ErrorData struct {
	Error string `json:"error"`
}

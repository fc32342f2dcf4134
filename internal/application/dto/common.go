package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeleteResponse resultado de un descarte.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

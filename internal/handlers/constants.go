package handlers

const (
	maxJSONBody = 1 << 20

	ErrInvalidRequest      = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInternalServerError = "Internal server error"
	ErrInvalidID           = "Invalid id"
)

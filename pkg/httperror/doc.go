// Package httperror defines the fixed taxonomy of HTTP-semantic errors used
// by handlers, middleware and the global error handler.
//
// Each Kind carries a name, a status code and a default message:
//
//	BadRequest(400) Unauthorized(401) Forbidden(403) NotFound(404)
//	Conflict(409) UnprocessableEntity(422) TooManyRequests(429)
//	InternalServerError(500) ServiceUnavailable(503)
//
// Handlers return these errors directly:
//
//	if user == nil {
//		return handler.Error(httperror.NotFound("user not found"))
//	}
//
// and the error handler writes the standard envelope:
//
//	{"error": "NotFound", "message": "user not found", "statusCode": 404}
//
// Any error that is not part of the taxonomy is classified by From as an
// InternalServerError with the default message, keeping the original error
// only as an internal cause for logging.
package httperror

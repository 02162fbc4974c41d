package adapter

import "errors"

var (
	ErrKeyNotSet       = errors.New("no api key stored for service")
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("api key rejected")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrTooManyRequests     = errors.New("rate limited")
	ErrInternalServerError = errors.New("upstream internal error")
	ErrBadGateway          = errors.New("bad gateway")
)

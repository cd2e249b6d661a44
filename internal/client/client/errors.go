package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors of the client taxonomy. Match them with errors.Is.
var (
	// ErrNetwork reports that no usable response was received: DNS,
	// refused connection, timeout, or an unreadable/undecodable body.
	ErrNetwork = errors.New("server connection error")
	// ErrUnauthorized is a 401: the credential was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is a 409, e.g. a duplicate username on registration.
	ErrConflict = errors.New("already exists")
	// ErrValidation is any other 4xx.
	ErrValidation = errors.New("request rejected")
	// ErrServer is a 5xx.
	ErrServer = errors.New("server failure")
)

// ErrorKind classifies an error into the client taxonomy.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetwork
	KindUnauthorized
	KindConflict
	KindValidation
	KindServer
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Kind returns the taxonomy bucket of err. A nil error is KindNone.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrServer):
		return KindServer
	default:
		return KindUnknown
	}
}

// StatusError is a non-2xx response. It unwraps to the sentinel matching
// its status code.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %v", e.Method, e.Path, e.Code, http.StatusText(e.Code), e.Unwrap())
}

func (e *StatusError) Unwrap() error {
	return sentinelFor(e.Code)
}

func sentinelFor(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

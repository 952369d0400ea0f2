package exchange

import (
	"errors"
	"fmt"
)

type RegistryErrorKind string

const (
	KindInvalidToken   RegistryErrorKind = "InvalidToken"
	KindDuplicateToken RegistryErrorKind = "DuplicateToken"
)

var (
	ErrInvalidToken   = errors.New("invalid token identifier")
	ErrDuplicateToken = errors.New("duplicate token identifier")
)

// RegistryError is returned by registry mutations. It carries the kind of
// failure and the token that triggered it.
type RegistryError struct {
	Kind  RegistryErrorKind
	Token string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind, e.Token)
}

func (e *RegistryError) Unwrap() error {
	switch e.Kind {
	case KindInvalidToken:
		return ErrInvalidToken
	case KindDuplicateToken:
		return ErrDuplicateToken
	}

	return nil
}

package entity

import "fmt"

const DefaultFactoryLabel = "Factory"

// Exchange identifies one token-trading venue bound to a registry.
// All fields take part in equality, so the value is usable as a map key.
type Exchange struct {
	token   string
	factory string
	server  string
}

func NewExchange(token, factory, server string) Exchange {
	return Exchange{
		token:   token,
		factory: factory,
		server:  server,
	}
}

func (e Exchange) Token() string {
	return e.token
}

func (e Exchange) Factory() string {
	return e.factory
}

func (e Exchange) Server() string {
	return e.server
}

func (e Exchange) String() string {
	return fmt.Sprintf("Exchange{token: %s, factory: %s, server: %s}", e.token, e.factory, e.server)
}

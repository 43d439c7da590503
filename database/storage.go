package database

// Storage is the persistence boundary consumed by the router and handlers.
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() interface{}
}

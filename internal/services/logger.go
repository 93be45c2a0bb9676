package services

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ServiceIdentifier interface {
	ID() string
}

// ServiceLogger tags every event with the owning DI service.
type ServiceLogger struct {
	zerolog.Logger
	service string
}

func NewServiceLogger(svc ServiceIdentifier) *ServiceLogger {
	return &ServiceLogger{
		Logger:  log.With().Str("service", svc.ID()).Logger(),
		service: svc.ID(),
	}
}

// Component derives a logger for a collaborator owned by the service.
func (l *ServiceLogger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func (l *ServiceLogger) Service() string {
	return l.service
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestObserver recibe la duración de cada petición (lo implementa metrics.HTTP).
type RequestObserver interface {
	Observe(method, route string, status int, elapsed time.Duration)
}

// ObserveRequests registra cada petición en métricas y en el log (debug; warn para 5xx).
// La ruta es el patrón registrado (/api/articles/:id), no la URL concreta.
func ObserveRequests(obs RequestObserver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if obs != nil {
			obs.Observe(c.Method(), route, status, elapsed)
		}

		ev := log.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("petición")
		return err
	}
}

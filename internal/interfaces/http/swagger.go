package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
)

// SwaggerMiddleware monta la UI de documentación en /docs si specFile existe.
// Devuelve nil cuando no hay spec en disco: el servidor arranca sin
// documentación en lugar de caer en pánico antes de escuchar.
func SwaggerMiddleware(specFile, title string) fiber.Handler {
	if _, err := os.Stat(specFile); err != nil {
		return nil
	}
	return swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: specFile,
		Path:     "docs",
		Title:    title,
	})
}

package common

import "github.com/gofiber/fiber/v2"

// With appends handlers to a copy of the middleware chain mw.
func With(mw []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(handlers))
	out = append(out, mw...)
	return append(out, handlers...)
}

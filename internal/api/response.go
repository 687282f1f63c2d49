package api

import "github.com/gofiber/fiber/v2"

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func success(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(successBody{Success: true, Data: data})
}

func failure(c *fiber.Ctx, code int, message string) error {
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(errorBody{Success: false, Message: message})
}

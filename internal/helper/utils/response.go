package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the stable deny payload surfaced to callers. Codes are
// pre-assigned per failure domain: 401xx unauthenticated, 403xx forbidden,
// 404xx not found, 500xx internal.
type ErrorBody struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// SocketErrorBody is the socket-transport variant; expired tokens also
// report when they expired.
type SocketErrorBody struct {
	Code      int        `json:"code"`
	Status    bool       `json:"status"`
	Message   string     `json:"message"`
	ExpiredAt *time.Time `json:"expiredAt,omitempty"`
}

// Registered deny payloads. Guard stages return these values, never ad-hoc
// strings, so the external contract stays stable per failure category.
var (
	ErrBodyNoToken      = ErrorBody{Code: 40101, Status: false, Message: "no credentials provided"}
	ErrBodyTokenExpired = ErrorBody{Code: 40102, Status: false, Message: "token expired"}
	ErrBodyTokenInvalid = ErrorBody{Code: 40103, Status: false, Message: "invalid token"}
	ErrBodyNoPermission = ErrorBody{Code: 40301, Status: false, Message: "noPermission"}
	ErrBodyRoleNotFound = ErrorBody{Code: 40401, Status: false, Message: "role not found"}
	ErrBodyInternal     = ErrorBody{Code: 50001, Status: false, Message: "internal error"}
)

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// ResponseDeny writes a registered error payload.
func ResponseDeny(ctx *fiber.Ctx, httpStatus int, body ErrorBody) error {
	return ctx.Status(httpStatus).JSON(body)
}

// ResponseSocketDeny writes the socket variant of a registered payload.
func ResponseSocketDeny(ctx *fiber.Ctx, httpStatus int, body ErrorBody, expiredAt *time.Time) error {
	return ctx.Status(httpStatus).JSON(SocketErrorBody{
		Code:      body.Code,
		Status:    body.Status,
		Message:   body.Message,
		ExpiredAt: expiredAt,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}

package handlers

import (
	"errors"

	"github.com/SundayYogurt/directory_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/helper/utils"
	"github.com/SundayYogurt/directory_service/internal/repository"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	svc      services.BusinessService
	validate *validator.Validate
}

func NewBusinessHandler(svc services.BusinessService) *BusinessHandler {
	return &BusinessHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *BusinessHandler) SetupRoutes(app *fiber.App, guard *middleware.Guard) {
	api := app.Group("/api")
	business := api.Group("/business")

	business.Post("/register", h.Register)
	business.Post("/login", h.Login)
	business.Post("/logout", guard.Protect("business.logout"), h.Logout)

	business.Get("/me", guard.Protect("business.me"), h.Me)
	business.Put("/:businessID/roles", guard.Protect("business.roles"), h.SetRoles)
}

func (h *BusinessHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.BusinessRegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.Register(ctx.UserContext(), requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, "Business registered successfully")
}

func (h *BusinessHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.LoginRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	tokens, err := h.svc.Login(ctx.UserContext(), requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Invalid email or password")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    tokens.Token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tokens)
}

func (h *BusinessHandler) Logout(ctx *fiber.Ctx) error {
	businessID, ok := ctx.Locals("businessID").(uint)
	if !ok || businessID == 0 {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "business principal required")
	}
	if err := h.svc.Logout(ctx.UserContext(), businessID); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	ctx.ClearCookie("token")
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *BusinessHandler) Me(ctx *fiber.Ctx) error {
	businessID, ok := ctx.Locals("businessID").(uint)
	if !ok || businessID == 0 {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "business principal required")
	}

	profile, err := h.svc.GetProfile(ctx.UserContext(), businessID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *BusinessHandler) SetRoles(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.SetRolesRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetRoles(ctx.UserContext(), uint(businessID), requestBody); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return utils.ResponseDeny(ctx, fiber.StatusNotFound, utils.ErrBodyRoleNotFound)
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "roles updated")
}

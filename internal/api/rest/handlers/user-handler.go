package handlers

import (
	"errors"

	"github.com/SundayYogurt/directory_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/helper/utils"
	"github.com/SundayYogurt/directory_service/internal/repository"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	svc      services.UserService
	rbac     services.RBACService
	validate *validator.Validate
}

func NewUserHandler(svc services.UserService, rbac services.RBACService) *UserHandler {
	return &UserHandler{
		svc:      svc,
		rbac:     rbac,
		validate: validator.New(),
	}
}

func (h *UserHandler) SetupRoutes(app *fiber.App, guard *middleware.Guard) {
	api := app.Group("/api")
	user := api.Group("/user")

	// Auth
	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Post("/refresh", h.Refresh)
	user.Post("/logout", guard.Protect("user.logout"), h.Logout)

	// Profile
	user.Get("/me", guard.Protect("user.me"), h.Me)
	user.Put("/me", guard.Protect("user.me"), h.UpdateProfile)

	// Admin
	user.Get("/list", guard.Protect("user.list"), h.List)
	user.Delete("/:userID", guard.Protect("user.delete"), h.Delete)
	user.Patch("/:userID/status", guard.Protect("user.status"), h.SetStatus)
	user.Put("/:userID/roles", guard.Protect("user.roles"), h.SetRoles)
	user.Get("/:userID/roles", guard.Protect("user.rolesGet"), h.GetRoles)
}

func (h *UserHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.Register(ctx.UserContext(), requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, "User registered successfully")
}

func (h *UserHandler) Login(ctx *fiber.Ctx) error {
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
	ctx.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.Refresh,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tokens)
}

func (h *UserHandler) Refresh(ctx *fiber.Ctx) error {
	var requestBody dto.RefreshRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Refresh == "" {
		// fall back to the refresh cookie
		requestBody.Refresh = ctx.Cookies("refresh_token")
	}
	if requestBody.Refresh == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "refresh token is required")
	}

	tokens, err := h.svc.Refresh(ctx.UserContext(), requestBody.Refresh)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tokens)
}

func (h *UserHandler) Logout(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "user principal required")
	}
	if err := h.svc.Logout(ctx.UserContext(), userID); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	ctx.ClearCookie("token", "refresh_token")
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *UserHandler) Me(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "user principal required")
	}

	profile, err := h.svc.GetProfile(ctx.UserContext(), userID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return utils.ResponseError(ctx, fiber.StatusForbidden, "user principal required")
	}

	var requestBody dto.UpdateUserProfile
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	profile, err := h.svc.UpdateProfile(ctx.UserContext(), userID, requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *UserHandler) List(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	users, err := h.svc.List(ctx.UserContext(), limit, offset)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, users)
}

func (h *UserHandler) Delete(ctx *fiber.Ctx) error {
	userID, err := ctx.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.Delete(ctx.UserContext(), uint(userID)); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "user deleted")
}

func (h *UserHandler) SetStatus(ctx *fiber.Ctx) error {
	userID, err := ctx.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	var requestBody dto.SetStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetStatus(ctx.UserContext(), uint(userID), requestBody.Status); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "status updated")
}

func (h *UserHandler) SetRoles(ctx *fiber.Ctx) error {
	userID, err := ctx.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	var requestBody dto.SetRolesRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetRoles(ctx.UserContext(), uint(userID), requestBody); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return utils.ResponseDeny(ctx, fiber.StatusNotFound, utils.ErrBodyRoleNotFound)
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "roles updated")
}

func (h *UserHandler) GetRoles(ctx *fiber.Ctx) error {
	userID, err := ctx.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	roles, err := h.rbac.RolesOf(ctx.UserContext(), domain.UserPrincipal(uint(userID)))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.PrincipalRolesResponse{
		PrincipalID: uint(userID),
		Kind:        "user",
		Roles:       roles,
	})
}

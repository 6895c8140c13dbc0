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

type RoleHandler struct {
	rbac     services.RBACService
	validate *validator.Validate
}

func NewRoleHandler(rbac services.RBACService) *RoleHandler {
	return &RoleHandler{
		rbac:     rbac,
		validate: validator.New(),
	}
}

func (h *RoleHandler) SetupRoutes(app *fiber.App, guard *middleware.Guard) {
	api := app.Group("/api")

	role := api.Group("/role")
	role.Get("/", guard.Protect("role.list"), h.ListRoles)
	role.Post("/", guard.Protect("role.create"), h.CreateRole)
	role.Post("/:code/permissions", guard.Protect("role.grant"), h.GrantPermissions)

	api.Get("/permissions", guard.Protect("permission.list"), h.ListPermissions)
}

func (h *RoleHandler) ListRoles(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	roles, err := h.rbac.ListRoles(ctx.UserContext(), limit, offset)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, roles)
}

func (h *RoleHandler) CreateRole(ctx *fiber.Ctx) error {
	var requestBody dto.CreateRoleRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	role, err := h.rbac.CreateRole(ctx.UserContext(), requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.RoleResponse{
		ID:     role.ID,
		Code:   role.Code,
		Name:   role.Name,
		Status: role.Status,
	})
}

func (h *RoleHandler) GrantPermissions(ctx *fiber.Ctx) error {
	code := ctx.Params("code")
	if code == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "role code is required")
	}

	var requestBody dto.GrantPermissionsRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := h.validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	userID, _ := ctx.Locals("userID").(uint)
	err := h.rbac.GrantPermissions(ctx.UserContext(), code, requestBody.Permissions, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return utils.ResponseDeny(ctx, fiber.StatusNotFound, utils.ErrBodyRoleNotFound)
		}
		if errors.Is(err, repository.ErrPermissionNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "permissions granted")
}

func (h *RoleHandler) ListPermissions(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 100)
	offset := ctx.QueryInt("offset", 0)

	perms, err := h.rbac.ListPermissions(ctx.UserContext(), limit, offset)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, perms)
}

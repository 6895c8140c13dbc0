package handlers

import (
	"time"

	"github.com/SundayYogurt/directory_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/helper/utils"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

// DirectoryHandler serves the public directory surface. Its routes use the
// soft and optional guard modes: anonymous callers are welcome, valid
// tokens personalise the response.
type DirectoryHandler struct {
	businessSvc services.BusinessService
}

func NewDirectoryHandler(businessSvc services.BusinessService) *DirectoryHandler {
	return &DirectoryHandler{businessSvc: businessSvc}
}

func (h *DirectoryHandler) SetupRoutes(app *fiber.App, guard *middleware.Guard) {
	api := app.Group("/api")

	directory := api.Group("/directory")
	directory.Get("/businesses", guard.Protect("directory.businesses"), h.ListBusinesses)
	directory.Get("/feed", guard.Protect("directory.feed"), h.Feed)

	api.Get("/socket/token-info", guard.ProtectSocket("socket.tokenInfo"), h.TokenInfo)
}

func (h *DirectoryHandler) ListBusinesses(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	businesses, err := h.businessSvc.List(ctx.UserContext(), limit, offset)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	principal := middleware.CurrentPrincipal(ctx)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"businesses": businesses,
		"viewer":     principal.String(),
	})
}

func (h *DirectoryHandler) Feed(ctx *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(ctx)

	// Optional auth: business tokens were downgraded to anonymous before
	// this handler runs, so only user principals personalise the feed.
	if principal.Kind == domain.PrincipalUser {
		return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
			"feed":    "personalised",
			"user_id": principal.UserID,
		})
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"feed": "public",
	})
}

func (h *DirectoryHandler) TokenInfo(ctx *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(ctx)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"principal":  principal.String(),
		"kind":       principal.Kind.String(),
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	})
}

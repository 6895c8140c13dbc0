package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/helper"
	"github.com/SundayYogurt/directory_service/internal/helper/utils"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Guard evaluates the per-operation pipeline: auth stage, soft-presence
// stage, permission stage, then ALLOW/DENY. Stages run strictly in order;
// a DENY short-circuits before the operation handler.
type Guard struct {
	auth     helper.Auth
	rbac     services.RBACService
	registry Registry
	logger   *zap.Logger
}

func NewGuard(auth helper.Auth, rbac services.RBACService, registry Registry, logger *zap.Logger) *Guard {
	return &Guard{
		auth:     auth,
		rbac:     rbac,
		registry: registry,
		logger:   logger,
	}
}

// Protect returns the middleware for a registered operation. Unregistered
// identifiers fail at route-setup time, not per request.
func (g *Guard) Protect(op string) fiber.Handler {
	spec, ok := g.registry[op]
	if !ok {
		panic(fmt.Sprintf("guard: operation %q is not registered", op))
	}

	return func(ctx *fiber.Ctx) error {
		principal, deny := g.resolvePrincipal(ctx, spec.Mode)
		if deny != nil {
			return utils.ResponseDeny(ctx, fiber.StatusUnauthorized, *deny)
		}
		if err := g.checkPermissions(ctx, op, spec, principal); err != nil {
			return err
		}
		setPrincipalLocals(ctx, principal)
		return ctx.Next()
	}
}

// ProtectSocket guards a websocket handshake: the token comes from the
// handshake query and expired-token denials also carry expiredAt. Socket
// operations are required-auth only; other modes fail at route setup.
func (g *Guard) ProtectSocket(op string) fiber.Handler {
	spec, ok := g.registry[op]
	if !ok {
		panic(fmt.Sprintf("guard: operation %q is not registered", op))
	}
	if spec.Mode != AuthRequired {
		panic(fmt.Sprintf("guard: socket operation %q must be required-auth", op))
	}

	return func(ctx *fiber.Ctx) error {
		tokenStr, err := helper.ExtractSocketToken(ctx.Queries())
		if err != nil {
			return utils.ResponseSocketDeny(ctx, fiber.StatusUnauthorized, utils.ErrBodyNoToken, nil)
		}

		claims, err := g.auth.VerifyToken(tokenStr)
		if err != nil {
			if errors.Is(err, helper.ErrTokenExpired) {
				expiredAt := time.Unix(claims.Exp, 0)
				return utils.ResponseSocketDeny(ctx, fiber.StatusUnauthorized, utils.ErrBodyTokenExpired, &expiredAt)
			}
			return utils.ResponseSocketDeny(ctx, fiber.StatusUnauthorized, utils.ErrBodyTokenInvalid, nil)
		}

		principal := helper.PrincipalFromClaims(claims)
		if err := g.checkPermissions(ctx, op, spec, principal); err != nil {
			return err
		}
		setPrincipalLocals(ctx, principal)
		return ctx.Next()
	}
}

// resolvePrincipal runs the auth and soft-presence stages. A nil deny body
// means the pipeline continues with the returned principal.
func (g *Guard) resolvePrincipal(ctx *fiber.Ctx, mode AuthMode) (domain.Principal, *utils.ErrorBody) {
	cookies := requestCookies(ctx)
	headers := requestHeaders(ctx)

	switch mode {
	case AuthRequired:
		tokenStr, err := helper.ExtractToken(cookies, headers)
		if err != nil {
			return domain.AnonymousPrincipal(), &utils.ErrBodyNoToken
		}
		claims, err := g.auth.VerifyToken(tokenStr)
		if err != nil {
			if errors.Is(err, helper.ErrTokenExpired) {
				return domain.AnonymousPrincipal(), &utils.ErrBodyTokenExpired
			}
			return domain.AnonymousPrincipal(), &utils.ErrBodyTokenInvalid
		}
		return helper.PrincipalFromClaims(claims), nil

	case AuthOptional:
		tokenStr := helper.ExtractTokenOptional(cookies, headers)
		if tokenStr == "" {
			return domain.AnonymousPrincipal(), nil
		}
		claims, err := g.auth.VerifyToken(tokenStr)
		if err != nil {
			return domain.AnonymousPrincipal(), nil
		}
		// Business tokens are not principals on optional endpoints.
		if claims.IsBusiness {
			return domain.AnonymousPrincipal(), nil
		}
		return helper.PrincipalFromClaims(claims), nil

	case AuthSoft:
		// Soft presence: both "no token" and "bad token" proceed as
		// Anonymous. Not the same as AuthRequired; keep them apart.
		tokenStr := helper.ExtractTokenOptional(cookies, headers)
		if tokenStr == "" {
			return domain.AnonymousPrincipal(), nil
		}
		claims, err := g.auth.VerifyToken(tokenStr)
		if err != nil {
			return domain.AnonymousPrincipal(), nil
		}
		return helper.PrincipalFromClaims(claims), nil

	default:
		return domain.AnonymousPrincipal(), &utils.ErrBodyInternal
	}
}

// checkPermissions runs the permission stage when the operation declared
// required codes. ANY-of semantics: one matching code authorizes the call.
func (g *Guard) checkPermissions(ctx *fiber.Ctx, op string, spec GuardSpec, principal domain.Principal) error {
	if len(spec.Permissions) == 0 {
		return nil
	}

	allowed, err := g.rbac.HasAnyPermission(ctx.UserContext(), principal, spec.Permissions)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("permission resolution failed",
				zap.String("operation", op),
				zap.Stringer("principal", principal),
				zap.Error(err))
		}
		return utils.ResponseDeny(ctx, fiber.StatusInternalServerError, utils.ErrBodyInternal)
	}
	if !allowed {
		if g.logger != nil {
			g.logger.Warn("permission denied",
				zap.String("operation", op),
				zap.Stringer("principal", principal),
				zap.Strings("required", spec.Permissions))
		}
		return utils.ResponseDeny(ctx, fiber.StatusForbidden, utils.ErrBodyNoPermission)
	}
	return nil
}

// setPrincipalLocals hands the resolved principal to the operation handler.
// Handlers never re-derive identity themselves.
func setPrincipalLocals(ctx *fiber.Ctx, principal domain.Principal) {
	ctx.Locals("principal", principal)
	switch principal.Kind {
	case domain.PrincipalUser:
		ctx.Locals("userID", principal.UserID)
	case domain.PrincipalBusiness:
		ctx.Locals("businessID", principal.BusinessID)
	}
}

// CurrentPrincipal reads the principal a guard stored for this request.
func CurrentPrincipal(ctx *fiber.Ctx) domain.Principal {
	if p, ok := ctx.Locals("principal").(domain.Principal); ok {
		return p
	}
	return domain.AnonymousPrincipal()
}

// requestCookies collects the request cookies in wire order.
func requestCookies(ctx *fiber.Ctx) []helper.Cookie {
	var cookies []helper.Cookie
	ctx.Request().Header.VisitAllCookie(func(key, value []byte) {
		cookies = append(cookies, helper.Cookie{Name: string(key), Value: string(value)})
	})
	return cookies
}

func requestHeaders(ctx *fiber.Ctx) map[string]string {
	return map[string]string{
		"token":         ctx.Get("token"),
		"authorization": ctx.Get(fiber.HeaderAuthorization),
		"cookie":        ctx.Get(fiber.HeaderCookie),
	}
}

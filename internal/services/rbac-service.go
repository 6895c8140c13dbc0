package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/repository"
)

// Role/permission reads are bounded so a store outage cannot park a request
// forever. No retries: a failed read propagates as-is.
const resolveTimeout = 5 * time.Second

type RBACService interface {
	// ResolveRoles returns the active role ids for a principal. Anonymous
	// resolves to the empty set without touching the store.
	ResolveRoles(ctx context.Context, principal domain.Principal) ([]uint, error)
	// ResolvePermissions expands role ids into the deduplicated permission
	// codes they grant.
	ResolvePermissions(ctx context.Context, roleIDs []uint) ([]string, error)
	// HasAnyPermission reports whether the principal holds at least one of
	// the required codes.
	HasAnyPermission(ctx context.Context, principal domain.Principal, required []string) (bool, error)

	// Role administration
	ListRoles(ctx context.Context, limit, offset int) ([]dto.RoleResponse, error)
	ListPermissions(ctx context.Context, limit, offset int) ([]dto.PermissionResponse, error)
	CreateRole(ctx context.Context, input dto.CreateRoleRequest) (*domain.Role, error)
	GrantPermissions(ctx context.Context, roleCode string, permCodes []string, creationUserID uint) error
	RolesOf(ctx context.Context, principal domain.Principal) ([]dto.RoleResponse, error)
}

type rbacService struct {
	roleRepo         repository.RoleRepository
	permRepo         repository.PermissionRepository
	userRoleRepo     repository.UserRoleRepository
	businessRoleRepo repository.BusinessRoleRepository
}

func NewRBACService(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	userRoleRepo repository.UserRoleRepository,
	businessRoleRepo repository.BusinessRoleRepository,
) RBACService {
	return &rbacService{
		roleRepo:         roleRepo,
		permRepo:         permRepo,
		userRoleRepo:     userRoleRepo,
		businessRoleRepo: businessRoleRepo,
	}
}

func (s *rbacService) ResolveRoles(ctx context.Context, principal domain.Principal) ([]uint, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	switch principal.Kind {
	case domain.PrincipalUser:
		return s.userRoleRepo.FindRoleIDsByUserID(ctx, principal.UserID)
	case domain.PrincipalBusiness:
		return s.businessRoleRepo.FindRoleIDsByBusinessID(ctx, principal.BusinessID)
	case domain.PrincipalAnonymous:
		return nil, nil
	default:
		return nil, errors.New("unknown principal kind")
	}
}

func (s *rbacService) ResolvePermissions(ctx context.Context, roleIDs []uint) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	return s.permRepo.FindCodesByRoleIDs(ctx, roleIDs)
}

func (s *rbacService) HasAnyPermission(ctx context.Context, principal domain.Principal, required []string) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}
	roleIDs, err := s.ResolveRoles(ctx, principal)
	if err != nil {
		return false, err
	}
	granted, err := s.ResolvePermissions(ctx, roleIDs)
	if err != nil {
		return false, err
	}
	return HasAny(granted, required), nil
}

// HasAny reports whether granted and required intersect. An empty granted
// set is false, never an error.
func HasAny(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, code := range granted {
		set[code] = struct{}{}
	}
	for _, code := range required {
		if _, ok := set[code]; ok {
			return true
		}
	}
	return false
}

func (s *rbacService) ListRoles(ctx context.Context, limit, offset int) ([]dto.RoleResponse, error) {
	roles, err := s.roleRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Code: r.Code, Name: r.Name, Status: r.Status})
	}
	return out, nil
}

func (s *rbacService) ListPermissions(ctx context.Context, limit, offset int) ([]dto.PermissionResponse, error) {
	perms, err := s.permRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, dto.PermissionResponse{ID: p.ID, Code: p.Code, Description: p.Description})
	}
	return out, nil
}

func (s *rbacService) CreateRole(ctx context.Context, input dto.CreateRoleRequest) (*domain.Role, error) {
	code := strings.TrimSpace(strings.ToUpper(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, errors.New("role code and name are required")
	}

	role := &domain.Role{Code: code, Name: name, Status: domain.StatusActive}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *rbacService) GrantPermissions(ctx context.Context, roleCode string, permCodes []string, creationUserID uint) error {
	role, err := s.roleRepo.FindByCode(ctx, roleCode)
	if err != nil {
		return err
	}

	// Dedupe before the existence check: the IN query returns one row per
	// distinct code, so repeated codes must not count twice.
	seen := make(map[string]struct{}, len(permCodes))
	codes := make([]string, 0, len(permCodes))
	for _, code := range permCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return errors.New("no permissions provided")
	}

	perms, err := s.permRepo.FindByCodes(ctx, codes)
	if err != nil {
		return err
	}
	if len(perms) != len(codes) {
		return repository.ErrPermissionNotFound
	}

	permIDs := make([]uint, 0, len(perms))
	for _, p := range perms {
		permIDs = append(permIDs, p.ID)
	}
	return s.permRepo.GrantToRole(ctx, role.ID, permIDs, creationUserID)
}

func (s *rbacService) RolesOf(ctx context.Context, principal domain.Principal) ([]dto.RoleResponse, error) {
	var (
		roles []domain.Role
		err   error
	)
	switch principal.Kind {
	case domain.PrincipalUser:
		roles, err = s.userRoleRepo.GetRolesByUserID(ctx, principal.UserID)
	case domain.PrincipalBusiness:
		roles, err = s.businessRoleRepo.GetRolesByBusinessID(ctx, principal.BusinessID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Code: r.Code, Name: r.Name, Status: r.Status})
	}
	return out, nil
}

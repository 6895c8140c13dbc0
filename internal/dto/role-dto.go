package dto

type SetRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"` // ["DIRUSER","BUSINESS"]
}

type CreateRoleRequest struct {
	Code string `json:"code" validate:"required,uppercase"`
	Name string `json:"name" validate:"required"`
}

type GrantPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type RoleResponse struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type PermissionResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type PrincipalRolesResponse struct {
	PrincipalID uint           `json:"principal_id"`
	Kind        string         `json:"kind"`
	Roles       []RoleResponse `json:"roles"`
}

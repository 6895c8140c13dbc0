package middleware

// AuthMode selects how the auth stage treats missing or bad credentials.
type AuthMode int

const (
	// AuthRequired rejects missing, invalid and expired tokens.
	AuthRequired AuthMode = iota
	// AuthOptional downgrades every credential failure to Anonymous and
	// never promotes business tokens to a principal.
	AuthOptional
	// AuthSoft is the permissive presence check: no token and bad token
	// both proceed as Anonymous, a valid token attaches its principal.
	AuthSoft
)

// GuardSpec is what a protected operation registers: its auth mode and the
// permission codes it requires (empty = authenticated only).
type GuardSpec struct {
	Mode        AuthMode
	Permissions []string
}

// Registry maps operation identifiers to their guard declarations. Routes
// consult it through Guard.Protect at registration time.
type Registry map[string]GuardSpec

// DefaultRegistry declares every protected operation of the service.
func DefaultRegistry() Registry {
	return Registry{
		"user.me":       {Mode: AuthRequired},
		"user.logout":   {Mode: AuthRequired},
		"user.list":     {Mode: AuthRequired, Permissions: []string{"USRLISALL"}},
		"user.delete":   {Mode: AuthRequired, Permissions: []string{"USRDELALL"}},
		"user.status":   {Mode: AuthRequired, Permissions: []string{"USRDELALL"}},
		"user.roles":    {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},
		"user.rolesGet": {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},

		"business.me":     {Mode: AuthRequired},
		"business.logout": {Mode: AuthRequired},
		"business.roles":  {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},

		"role.list":       {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},
		"role.create":     {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},
		"role.grant":      {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},
		"permission.list": {Mode: AuthRequired, Permissions: []string{"ROLASSALL"}},

		"directory.businesses": {Mode: AuthSoft},
		"directory.feed":       {Mode: AuthOptional},

		"socket.tokenInfo": {Mode: AuthRequired},
	}
}

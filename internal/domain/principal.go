package domain

import "fmt"

// PrincipalKind discriminates who a verified token belongs to.
type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalUser
	PrincipalBusiness
)

func (k PrincipalKind) String() string {
	switch k {
	case PrincipalUser:
		return "user"
	case PrincipalBusiness:
		return "business"
	default:
		return "anonymous"
	}
}

// Principal is the resolved identity driving a request. It is a runtime
// value only, never persisted. Switch over Kind; exactly one of UserID or
// BusinessID is meaningful, matching Kind.
type Principal struct {
	Kind       PrincipalKind
	UserID     uint
	BusinessID uint
}

func AnonymousPrincipal() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

func UserPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalUser, UserID: id}
}

func BusinessPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalBusiness, BusinessID: id}
}

func (p Principal) IsAnonymous() bool {
	return p.Kind == PrincipalAnonymous
}

// String renders a compact form for logs, e.g. "user:42".
func (p Principal) String() string {
	switch p.Kind {
	case PrincipalUser:
		return fmt.Sprintf("user:%d", p.UserID)
	case PrincipalBusiness:
		return fmt.Sprintf("business:%d", p.BusinessID)
	default:
		return "anonymous"
	}
}

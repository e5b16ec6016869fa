package domain

// Role is the caller role asserted by the authentication collaborator.
type Role string

const (
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// Identity is the trusted caller produced upstream of the core.
type Identity struct {
	UserID         string `json:"user_id"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// CanManage reports whether the caller may mutate tasks or review registrations of organizationID.
func (i Identity) CanManage(organizationID string) bool {
	if !i.IsAuthenticated() {
		return false
	}
	if i.Role == RoleAdmin {
		return true
	}
	return i.Role == RoleOrganization && i.OrganizationID != "" && i.OrganizationID == organizationID
}

// ParseRole maps a header value onto a Role. Empty input defaults to volunteer.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case "":
		return RoleVolunteer, true
	case RoleVolunteer, RoleOrganization, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

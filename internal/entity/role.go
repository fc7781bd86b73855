package entity

// Role names form a closed set. They are seeded once at startup and the
// catalog is read-only afterwards.
const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// AllRoleNames lists every valid role name.
func AllRoleNames() []string {
	return []string{RoleUser, RoleAdmin, RoleModerator}
}

// IsValidRoleName reports whether name is one of the known role constants.
// Matching is case-sensitive.
func IsValidRoleName(name string) bool {
	switch name {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	default:
		return false
	}
}

// DbRole represents a persisted role definition. Identity for lookups is the
// name, not the numeric id.
type DbRole struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
}

// TableName overrides default pluralised name.
func (DbRole) TableName() string {
	return "roles"
}

// RoleListResponse is the response for listing the role catalog.
type RoleListResponse struct {
	Roles []DbRole `json:"roles"`
}

package auth

import (
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	ShopID uuid.UUID
	Role   enums.MemberRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by POS clients.
type AccessTokenClaims struct {
	UserID uuid.UUID        `json:"user_id"`
	ShopID uuid.UUID        `json:"shop_id"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// CanManageStock reports whether the role may write stock, settings and voids.
func (c *AccessTokenClaims) CanManageStock() bool {
	switch c.Role {
	case enums.MemberRoleOwner, enums.MemberRoleAdmin, enums.MemberRoleManager:
		return true
	}
	return false
}

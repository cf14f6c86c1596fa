package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/servicioshogar/chat/common"
	"github.com/servicioshogar/chat/pkg/errcode"
)

// ExternalClaims represents claims issued by the marketplace auth provider.
// The marketplace token carries an int user_id which is converted to the
// chat string user_id via common.Actor.
type ExternalClaims struct {
	UserId int64  `json:"user_id"`
	Role   string `json:"role,omitempty"` // "customer", "provider", "admin". Falls back to configured default.
	jwt.RegisteredClaims
}

// ParseExternalToken parses a marketplace JWT token and converts it to
// the chat system's Claims using Actor-based id mapping.
//
// Parameters:
//   - tokenString: the raw JWT token from the marketplace
//   - secret: the signing secret shared with the marketplace
//   - defaultRole: fallback role when the token doesn't carry one
func ParseExternalToken(tokenString, secret, defaultRole string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ExternalClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errcode.ErrTokenInvalid.Wrap(err)
	}

	extClaims, ok := token.Claims.(*ExternalClaims)
	if !ok || !token.Valid {
		return nil, errcode.ErrTokenInvalid
	}

	// Determine role: prefer the token's own role, fall back to config default
	role := common.RoleType(extClaims.Role)
	if extClaims.Role == "" {
		role = common.RoleType(defaultRole)
	}

	// Convert marketplace int id → chat string id via Actor
	actor := common.Actor{Id: extClaims.UserId, Role: role}
	chatUserId, err := actor.ToChatUserId()
	if err != nil {
		return nil, errcode.ErrTokenInvalid.Wrap(err)
	}

	return &Claims{
		UserId:           chatUserId,
		Role:             role,
		RegisteredClaims: extClaims.RegisteredClaims,
	}, nil
}

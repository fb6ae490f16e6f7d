package helper

import (
	"errors"
	"time"

	"resto_manager/config"
	"resto_manager/model"

	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(config.Config("JWT_SECRET"))
}

var tokenTTLByKind = map[string]time.Duration{
	model.TokenKindAdmin:   12 * time.Hour,
	model.TokenKindService: 24 * time.Hour,
	model.TokenKindClient:  2 * time.Hour,
}

// IssueKDSToken mints a websocket token for one restaurant. The subscriber
// kind is fixed here, at issuance, and travels inside the claim.
func IssueKDSToken(restaurantId uint, kind string) (string, error) {
	ttl, ok := tokenTTLByKind[kind]
	if !ok {
		return "", errors.New("unknown token kind")
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["restaurantId"] = restaurantId
	claims["kind"] = kind
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString(jwtSecret())
}

// ParseKDSToken verifies a websocket token and extracts its claim.
func ParseKDSToken(tokenStr string) (*model.TokenClaim, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	restaurantId, _ := claims["restaurantId"].(float64)
	kind, _ := claims["kind"].(string)
	if restaurantId <= 0 {
		return nil, errors.New("token has no restaurant")
	}
	switch kind {
	case model.TokenKindAdmin, model.TokenKindService, model.TokenKindClient:
	default:
		return nil, errors.New("token has no usable kind")
	}

	return &model.TokenClaim{RestaurantId: uint(restaurantId), Kind: kind}, nil
}

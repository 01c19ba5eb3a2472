package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"TallyChat/pkg/config"
	tokenstore "TallyChat/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextJTIKey    = "current_jti"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}

		userID, jti, err := ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextJTIKey, jti)
		c.Next()
	}
}

// ParseToken validates an HS256 JWT and returns its subject (user id) and
// jti. Shared with the websocket handler, which authenticates via query
// parameter instead of a header.
func ParseToken(tokenStr string) (userID uint, jti string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errInvalidToken
	}

	jti, _ = claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return 0, "", errRevokedToken
	}

	var sub string
	if s, ok := claims["sub"].(string); ok {
		sub = s
	} else if f, ok := claims["sub"].(float64); ok {
		// jwt lib may parse numeric as float64
		sub = strconv.Itoa(int(f))
	}
	id, convErr := strconv.Atoi(sub)
	if convErr != nil || id <= 0 {
		return 0, "", errInvalidToken
	}
	return uint(id), jti, nil
}

var (
	errInvalidToken = jwtError("invalid token")
	errRevokedToken = jwtError("Token has been revoked (logout)")
)

type jwtError string

func (e jwtError) Error() string { return string(e) }

// UserID reads the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint)
	return id
}

package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// Claims are the fields this service reads from an access token issued by the HR backend.
type Claims struct {
	UserID     string
	EmployeeID string
	Name       string
	Email      string
	IsAdmin    bool
}

type Service interface {
	GenerateAccessToken(claims Claims, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken is used by tooling and tests; production tokens come from the HR backend.
func (j *JWTService) GenerateAccessToken(claims Claims, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	payload := map[string]interface{}{
		"user_id":  claims.UserID,
		"email":    claims.Email,
		"name":     claims.Name,
		"is_admin": claims.IsAdmin,
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	}
	if claims.EmployeeID != "" {
		payload["employee_id"] = claims.EmployeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the verified token placed in ctx by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return Claims{}, auth.ErrInvalidToken
	}

	var c Claims
	c.UserID, _ = claims["user_id"].(string)
	c.EmployeeID, _ = claims["employee_id"].(string)
	c.Name, _ = claims["name"].(string)
	c.Email, _ = claims["email"].(string)
	c.IsAdmin, _ = claims["is_admin"].(bool)
	return c, nil
}

package echoapi

import (
	"sort"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

const (
	RoleOfficer = "officer"
	RoleAdmin   = "admin"

	tokenContextKey = "officerToken"
	tokenAudience   = "Admissions"
)

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims of an admissions officer transmitted via a JWT.
// Subject is the officer identifier recorded as RecordedBy / ChangedBy.
type Claims struct {
	jwt.StandardClaims
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// NewOfficerClaims returns claims valid for conf.Server.JWTExpirationDelta.
func NewOfficerClaims(conf *core.Config, officerID, name, email string, admin bool) *Claims {
	now := core.NowFunc()
	roles := []string{RoleOfficer}
	if admin {
		roles = append(roles, RoleAdmin)
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   officerID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  name,
		Email: email,
		Roles: roles,
	}
}

func (c Claims) HasRole(role string) bool {
	roles := append([]string(nil), c.Roles...)
	sort.Strings(roles)
	i := sort.SearchStrings(roles, role)
	return i < len(roles) && roles[i] == role
}

func (c Claims) Actor() core.Actor {
	return core.Actor{ID: c.Subject, Name: c.Name, Email: c.Email}
}

// GenerateToken generates a signed JWT token string representing the officer Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// officerID returns the subject of the request's token.
func officerID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errUnauthorized
	}
	return claims.Subject, nil
}

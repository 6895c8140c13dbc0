package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoToken      = errors.New("no credentials provided")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Auth struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func SetupAuth(secret string, accessTTL, refreshTTL time.Duration) Auth {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return Auth{
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

func (a Auth) GenerateToken(sub uint, username string, isBusiness bool) (string, error) {
	if sub == 0 {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(a.AccessTTL).Unix(),
	}
	if username != "" {
		claims["username"] = username
	}
	if isBusiness {
		claims["isBusiness"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

func (a Auth) GenerateRefreshToken(sub uint, isBusiness bool) (string, error) {
	if sub == 0 {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     sub,
		"refresh": true,
		"iat":     now.Unix(),
		"exp":     now.Add(a.RefreshTTL).Unix(),
	}
	if isBusiness {
		claims["isBusiness"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// VerifyToken checks signature and expiry and decodes the claims.
// On expiry it returns the decoded claims together with ErrTokenExpired so
// callers can still report when the token expired.
func (a Auth) VerifyToken(tokenString string) (dto.AuthClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthClaims{}, ErrNoToken
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthClaims{}, ErrTokenInvalid
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	// Expiry is checked manually below so expired tokens still yield claims.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.Secret), nil
	})
	if err != nil || !token.Valid {
		return dto.AuthClaims{}, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.AuthClaims{}, ErrTokenInvalid
	}

	sub, ok := mapClaims["sub"].(float64)
	if !ok || sub <= 0 {
		return dto.AuthClaims{}, ErrTokenInvalid
	}
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return dto.AuthClaims{}, ErrTokenInvalid
	}
	iat, _ := mapClaims["iat"].(float64)

	claims := dto.AuthClaims{
		Sub: uint(sub),
		Exp: int64(exp),
		Iat: int64(iat),
	}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if isBusiness, ok := mapClaims["isBusiness"].(bool); ok {
		claims.IsBusiness = isBusiness
	}

	if time.Now().Unix() > claims.Exp {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// PrincipalFromClaims maps verified claims onto the principal union.
func PrincipalFromClaims(claims dto.AuthClaims) domain.Principal {
	if claims.Sub == 0 {
		return domain.AnonymousPrincipal()
	}
	if claims.IsBusiness {
		return domain.BusinessPrincipal(claims.Sub)
	}
	return domain.UserPrincipal(claims.Sub)
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(plain),
	); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

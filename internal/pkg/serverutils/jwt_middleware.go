package serverutils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalsUserID = "user_id"

	LoginPath      = "/login"
	OnboardingPath = "/onboarding"
	DashboardPath  = "/dashboard"
)

var ErrInvalidSession = errors.New("invalid session token")

// IssueSessionToken signs an HS256 token for userID. The id is carried both as
// the standard subject and as user_id.
func IssueSessionToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     userID.String(),
		"user_id": userID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken verifies tokenStr and returns the user it belongs to.
func ParseSessionToken(secret, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}

	raw, _ := claims["sub"].(string)
	if raw == "" {
		raw, _ = claims["user_id"].(string)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return userID, nil
}

// TokenFromRequest reads the session cookie first and then the bearer header.
func TokenFromRequest(ctx *fiber.Ctx, cookieName string) string {
	if token := ctx.Cookies(cookieName); token != "" {
		return token
	}
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func unauthenticated(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(
		ErrorResponseWithDetails(fiber.StatusUnauthorized, message, fiber.Map{"redirect": LoginPath}),
	)
}

// NewSessionGuard rejects requests without a valid session and stores the
// caller's id under LocalsUserID.
func NewSessionGuard(secret, cookieName string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx, cookieName)
		if tokenStr == "" {
			return unauthenticated(ctx, "Missing session")
		}

		userID, err := ParseSessionToken(secret, tokenStr)
		if err != nil {
			return unauthenticated(ctx, "Invalid session")
		}

		ctx.Locals(LocalsUserID, userID.String())
		return ctx.Next()
	}
}

// GetUserID returns the id stored by the session guard.
func GetUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	switch v := ctx.Locals(LocalsUserID).(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, NewUnauthorized("Invalid session")
		}
		return id, nil
	}
	return uuid.Nil, NewUnauthorized("Missing session")
}

// OnboardingChecker reports whether a user finished the wizard.
type OnboardingChecker interface {
	IsOnboardingComplete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// NewOnboardingGuard sends users who have not finished onboarding back to the
// wizard. It must run after the session guard.
func NewOnboardingGuard(checker OnboardingChecker) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := GetUserID(ctx)
		if err != nil {
			return unauthenticated(ctx, "Missing session")
		}

		done, err := checker.IsOnboardingComplete(ctx.UserContext(), userID)
		if err != nil {
			return NewInternal(err)
		}
		if !done {
			return ctx.Status(fiber.StatusForbidden).JSON(
				ErrorResponseWithDetails(fiber.StatusForbidden, "Onboarding not complete", fiber.Map{"redirect": OnboardingPath}),
			)
		}
		return ctx.Next()
	}
}

package service

import (
	"context"
	"encoding/json"
	"strings"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"

	"github.com/google/uuid"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func modeOf(useOwnKeys bool) credit.Mode {
	if useOwnKeys {
		return credit.ModeOwnKeys
	}
	return credit.ModeCredits
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:              u.Id,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Plan:            string(u.Plan),
		UsageCount:      u.UsageCount,
		Credits:         u.Credits,
		ReservedCredits: u.ReservedCredits,
		CreatedAt:       u.CreatedAt,
	}
}

func balanceOf(u *entity.User) credit.Balance {
	return credit.Balance{Credits: u.Credits, Reserved: u.ReservedCredits}
}

// requireUser loads the session's user. A valid token for a vanished account
// is treated as signed out.
func requireUser(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindByID(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if user == nil {
		return nil, serverutils.NewUnauthorized("User not found").WithDetails(map[string]string{"redirect": serverutils.LoginPath})
	}
	return user, nil
}

// settingsOrDefault never returns nil settings; a user without a row is on
// the credit path with no providers.
func settingsOrDefault(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID) (*entity.Settings, error) {
	settings, err := uow.SettingsRepository().FindByUserID(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if settings == nil {
		settings = entity.NewSettings(userID)
	}
	if settings.APIKeys == nil {
		settings.APIKeys = map[credit.Provider]string{}
	}
	if settings.KeyNames == nil {
		settings.KeyNames = map[credit.Provider]string{}
	}
	return settings, nil
}

func eligibilityDetails(d credit.Decision) map[string]interface{} {
	missing := d.MissingProviders
	if missing == nil {
		missing = []string{}
	}
	return map[string]interface{}{
		"error":             d.Message,
		"reason":            string(d.Reason),
		"use_own_keys":      d.Mode == credit.ModeOwnKeys,
		"available_credits": d.AvailableCredits,
		"missing_providers": missing,
	}
}

// intFrom reads a numeric event payload value whether it was built locally or
// decoded from JSON.
func intFrom(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

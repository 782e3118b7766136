package implementation

import (
	"context"
	"errors"
	"time"

	"gen8n-be/internal/entity"
	"gen8n-be/internal/mapper"
	"gen8n-be/internal/model"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var row model.User
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	row := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(row)
	return nil
}

func (r *UserRepositoryImpl) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Select("first_name", "last_name", "updated_at").
		Updates(&model.User{FirstName: firstName, LastName: lastName, UpdatedAt: time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, specification.ByEmail{Email: email})
}

func (r *UserRepositoryImpl) AddCredits(ctx context.Context, id uuid.UUID, amount int) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *UserRepositoryImpl) FindByProvider(ctx context.Context, provider, providerUserID string) (*entity.User, error) {
	var link model.UserProvider
	err := specification.Apply(r.db.WithContext(ctx),
		specification.ByProviderIdentity{Provider: provider, ProviderUserID: providerUserID},
	).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.FindByID(ctx, link.UserId)
}

func (r *UserRepositoryImpl) SaveProvider(ctx context.Context, provider *entity.UserProvider) error {
	row := r.mapper.UserProviderToModel(provider)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	provider.Id = row.Id
	provider.CreatedAt = row.CreatedAt
	return nil
}

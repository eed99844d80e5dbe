package repository

import (
	"context"

	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/pkg/errorx"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"gorm.io/gorm"
)

var ErrDatabaseUnavailable = errorx.New(errorx.Unavailable, "Database is not available")

type BuildRunRepository interface {
	Create(ctx context.Context, data *entity.BuildRun) error
	UpdateStatus(ctx context.Context, id string, status entity.BuildRunStatus) error
	GetByID(ctx context.Context, id string) (*entity.BuildRun, error)
	GetListByGuildID(ctx context.Context, guildID string, limit int) ([]entity.BuildRun, error)
}

type buildRunRepository struct{}

func NewBuildRunRepository() BuildRunRepository {
	return &buildRunRepository{}
}

func db(ctx context.Context) (*gorm.DB, error) {
	tx := xcontext.DB(ctx)
	if tx == nil {
		return nil, ErrDatabaseUnavailable
	}

	return tx, nil
}

func (r *buildRunRepository) Create(ctx context.Context, data *entity.BuildRun) error {
	tx, err := db(ctx)
	if err != nil {
		return err
	}

	return tx.Create(data).Error
}

func (r *buildRunRepository) UpdateStatus(
	ctx context.Context, id string, status entity.BuildRunStatus,
) error {
	tx, err := db(ctx)
	if err != nil {
		return err
	}

	result := tx.Model(&entity.BuildRun{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *buildRunRepository) GetByID(ctx context.Context, id string) (*entity.BuildRun, error) {
	tx, err := db(ctx)
	if err != nil {
		return nil, err
	}

	result := entity.BuildRun{}
	if err := tx.Take(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *buildRunRepository) GetListByGuildID(
	ctx context.Context, guildID string, limit int,
) ([]entity.BuildRun, error) {
	tx, err := db(ctx)
	if err != nil {
		return nil, err
	}

	result := []entity.BuildRun{}
	err = tx.Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

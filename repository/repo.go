package repository

import (
	"context"
	"database/sql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"videoflix-transcoder/entities"
)

type VideoRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB
	CreateVideo(ctx context.Context, video *entities.Video) error
	FindVideoById(ctx context.Context, id uint) (*entities.Video, error)
	ListVideos(ctx context.Context) ([]*entities.Video, error)
	SetThumbnail(ctx context.Context, id uint, path string) error
	DeleteVideo(ctx context.Context, id uint) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) VideoRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return r.GetDB().WithContext(ctx).Create(video).Error
}

func (r *repo) FindVideoById(ctx context.Context, id uint) (*entities.Video, error) {
	video := &entities.Video{}
	err := r.GetDB().WithContext(ctx).First(video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return video, nil
}

func (r *repo) ListVideos(ctx context.Context) ([]*entities.Video, error) {
	var videos []*entities.Video
	err := r.GetDB().WithContext(ctx).Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// SetThumbnail attaches a thumbnail reference only when none is set yet,
// so a retried extraction never clobbers an existing cover image.
func (r *repo) SetThumbnail(ctx context.Context, id uint, path string) error {
	video := &entities.Video{}
	return r.GetDB().WithContext(ctx).Model(video).
		Where("id = ? AND (thumbnail IS NULL OR thumbnail = '')", id).
		Update("thumbnail", path).Error
}

func (r *repo) DeleteVideo(ctx context.Context, id uint) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Video{}, "id = ?", id).Error
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		err := callback(ctx)
		if err != nil {
			return err
		}
		return nil
	}, opts...)
}

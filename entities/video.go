package entities

import (
	"time"
	"videoflix-transcoder/constant"
)

type Video struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Title       string            `json:"title" gorm:"type:varchar(80);not null"`
	Description string            `json:"description" gorm:"type:varchar(500)"`
	Category    constant.Category `json:"category" gorm:"type:varchar(50);default:'drama'"`
	VideoFile   string            `json:"video_file" gorm:"type:varchar(500);not null"`
	Thumbnail   string            `json:"thumbnail" gorm:"type:varchar(500)"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

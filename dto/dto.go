package dto

import "github.com/google/uuid"

type TranscodeMessage struct {
	JobId      uuid.UUID `json:"jobId"`
	VideoId    uint      `json:"videoId"`
	SourcePath string    `json:"sourcePath"`
	Label      string    `json:"label"`
}

type ThumbnailMessage struct {
	JobId      uuid.UUID `json:"jobId"`
	VideoId    uint      `json:"videoId"`
	SourcePath string    `json:"sourcePath"`
}

type VideoResponse struct {
	Id           uint   `json:"id"`
	CreatedAt    string `json:"created_at"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailUrl string `json:"thumbnail_url"`
	Category     string `json:"category"`
}

package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"videoflix-transcoder/config"
	"videoflix-transcoder/constant"
	"videoflix-transcoder/dto"
	"videoflix-transcoder/entities"
	"videoflix-transcoder/repository"
	"videoflix-transcoder/service"
)

type videoHandler struct {
	cfg        *config.Config
	repo       repository.VideoRepository
	dispatcher service.Dispatcher
	resolver   service.Resolver
}

func addVideoRoutes(r *gin.Engine, h *videoHandler) {
	api := r.Group("/api")
	api.GET("/video/", h.list)
	api.POST("/video/", h.upload)
	api.DELETE("/video/:id", h.delete)
	// One route covers both the playlist and its segments; gin cannot
	// mix a static "index.m3u8" with a :segment param at the same level.
	api.GET("/video/:id/:resolution/:file", h.stream)
}

func (h *videoHandler) list(c *gin.Context) {
	videos, err := h.repo.ListVideos(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to list videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}

	response := make([]dto.VideoResponse, 0, len(videos))
	for _, video := range videos {
		response = append(response, dto.VideoResponse{
			Id:           video.ID,
			CreatedAt:    video.CreatedAt.Format(time.RFC3339),
			Title:        video.Title,
			Description:  video.Description,
			ThumbnailUrl: video.Thumbnail,
			Category:     string(video.Category),
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *videoHandler) upload(c *gin.Context) {
	ctx := c.Request.Context()

	title := c.PostForm("title")
	if title == "" || len(title) > 80 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required and must be at most 80 characters"})
		return
	}
	description := c.PostForm("description")
	if len(description) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description must be at most 500 characters"})
		return
	}
	category := constant.Category(c.PostForm("category"))
	if category == "" {
		category = constant.CategoryDrama
	}
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	file, err := c.FormFile("video_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_file is required"})
		return
	}

	sourcePath := filepath.Join(h.cfg.Media.Root, "videos", filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, sourcePath); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to store uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store uploaded file"})
		return
	}

	video := &entities.Video{
		Title:       title,
		Description: description,
		Category:    category,
		VideoFile:   sourcePath,
	}
	if err := h.repo.CreateVideo(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create video record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create video"})
		return
	}

	if err := h.dispatcher.VideoCreated(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("video_id", video.ID).Msg("failed to enqueue conversion jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue conversion jobs"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": video.ID})
}

func (h *videoHandler) delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	video, err := h.repo.FindVideoById(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find video"})
		return
	}

	if err := h.repo.DeleteVideo(ctx, video.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("video_id", video.ID).Msg("failed to delete video record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete video"})
		return
	}

	if err := h.dispatcher.VideoDeleted(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("video_id", video.ID).Msg("failed to clean up video files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clean up video files"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *videoHandler) stream(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}
	resolution := c.Param("resolution")
	file := c.Param("file")

	var path string
	var contentType string
	if file == "index.m3u8" {
		path, err = h.resolver.ResolvePlaylist(ctx, uint(id), resolution)
		contentType = constant.ContentTypePlaylist
	} else {
		path, err = h.resolver.ResolveSegment(ctx, uint(id), resolution, file)
		contentType = constant.ContentTypeSegment
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrPathTraversal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid segment name"})
		case errors.Is(err, service.ErrVideoNotFound), errors.Is(err, service.ErrArtifactNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "video or manifest not found"})
		default:
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to resolve artifact")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve artifact"})
		}
		return
	}

	c.Header("Content-Type", contentType)
	c.File(path)
}

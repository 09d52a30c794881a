// FILE: internal/service/material_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const downloadURLExpiry = 15 * time.Minute

// MaterialUpload carries one incoming document.
type MaterialUpload struct {
	Title       string
	FileName    string
	ContentType string
	SizeBytes   int64
	PageCount   int
	Body        io.Reader
}

// ObjectStore is the slice of blob storage the material flows need.
// Satisfied by storage.S3Storage.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type IMaterialService interface {
	// Upload gates on the plan's upload quotas before storing the file.
	Upload(ctx context.Context, userId uuid.UUID, upload *MaterialUpload) (*dto.MaterialResponse, error)
	List(ctx context.Context, userId uuid.UUID) (*dto.MaterialListResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, materialId uuid.UUID) error
	DownloadURL(ctx context.Context, userId uuid.UUID, materialId uuid.UUID) (string, error)
}

type materialService struct {
	uowFactory unitofwork.RepositoryFactory
	usage      IUsageService
	storage    ObjectStore
	logger     logger.ILogger
}

func NewMaterialService(
	uowFactory unitofwork.RepositoryFactory,
	usage IUsageService,
	store ObjectStore,
	log logger.ILogger,
) IMaterialService {
	return &materialService{
		uowFactory: uowFactory,
		usage:      usage,
		storage:    store,
		logger:     log,
	}
}

func (s *materialService) Upload(ctx context.Context, userId uuid.UUID, upload *MaterialUpload) (*dto.MaterialResponse, error) {
	// Quota first: the counter increment commits before the file lands, so a
	// storage failure wastes a quota slot rather than letting an over-quota
	// upload through.
	if err := s.usage.ConsumeUpload(ctx, userId, upload.PageCount); err != nil {
		return nil, err
	}

	materialId := uuid.New()
	storageKey := fmt.Sprintf("materials/%s/%s%s", userId, materialId, path.Ext(upload.FileName))

	if err := s.storage.Put(ctx, storageKey, upload.ContentType, upload.Body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	material := &entity.StudyMaterial{
		Id:          materialId,
		UserId:      userId,
		Title:       upload.Title,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		SizeBytes:   upload.SizeBytes,
		StorageKey:  storageKey,
		PageCount:   upload.PageCount,
		Status:      entity.MaterialStatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MaterialRepository().Create(ctx, material); err != nil {
		// Best effort: do not leave an orphan object behind.
		if delErr := s.storage.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("Material", "Failed to clean up stored object", map[string]interface{}{
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Material", "Material uploaded", map[string]interface{}{
		"user_id":     userId.String(),
		"material_id": materialId.String(),
		"pages":       upload.PageCount,
	})
	res := toMaterialResponse(material)
	return &res, nil
}

func (s *materialService) List(ctx context.Context, userId uuid.UUID) (*dto.MaterialListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	materials, err := uow.MaterialRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MaterialResponse, 0, len(materials))
	for _, material := range materials {
		items = append(items, toMaterialResponse(material))
	}
	return &dto.MaterialListResponse{Materials: items}, nil
}

func (s *materialService) Delete(ctx context.Context, userId uuid.UUID, materialId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	material, err := s.findOwned(ctx, uow, userId, materialId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MaterialRepository().Delete(ctx, material.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, material.StorageKey); err != nil {
		s.logger.Warn("Material", "Failed to delete stored object", map[string]interface{}{
			"storage_key": material.StorageKey,
			"error":       err.Error(),
		})
	}
	return nil
}

func (s *materialService) DownloadURL(ctx context.Context, userId uuid.UUID, materialId uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	material, err := s.findOwned(ctx, uow, userId, materialId)
	if err != nil {
		return "", err
	}
	return s.storage.PresignGet(ctx, material.StorageKey, downloadURLExpiry)
}

func (s *materialService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, materialId uuid.UUID) (*entity.StudyMaterial, error) {
	material, err := uow.MaterialRepository().FindById(ctx, materialId)
	if err != nil {
		return nil, err
	}
	if material == nil || material.UserId != userId {
		return nil, ErrMaterialNotFound
	}
	return material, nil
}

func toMaterialResponse(material *entity.StudyMaterial) dto.MaterialResponse {
	return dto.MaterialResponse{
		Id:          material.Id,
		Title:       material.Title,
		FileName:    material.FileName,
		ContentType: material.ContentType,
		SizeBytes:   material.SizeBytes,
		Status:      string(material.Status),
		CreatedAt:   material.CreatedAt,
	}
}

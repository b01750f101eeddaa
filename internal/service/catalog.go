package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lotus/internal/cache"
	"lotus/internal/domain"
	"lotus/internal/repository"
	"lotus/internal/storage"
)

const (
	cacheKeyCategories  = "catalog:categories"
	cacheKeyServicesFmt = "catalog:services:%v:%v:%v:%d:%d"
)

type CatalogServiceImpl struct {
	repo        repository.CatalogRepository
	fileStorage storage.FileStorage
	cache       *cache.Cache
	logger      *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, fileStorage storage.FileStorage, c *cache.Cache, logger *zap.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:        repo,
		fileStorage: fileStorage,
		cache:       c,
		logger:      logger,
	}
}

func (s *CatalogServiceImpl) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	if dto.DiscountPrice != nil && *dto.DiscountPrice >= dto.Price {
		return 0, errors.New("акционная цена должна быть ниже базовой")
	}

	id, err := s.repo.CreateService(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания услуги", zap.Error(err))
		return 0, errors.New("ошибка создания услуги")
	}

	s.invalidate(ctx)

	return id, nil
}

func (s *CatalogServiceImpl) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	service, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения услуги", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("услуга не найдена")
	}
	return service, nil
}

func (s *CatalogServiceImpl) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	if err := s.repo.UpdateService(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка обновления услуги")
	}

	s.invalidate(ctx)

	return nil
}

func (s *CatalogServiceImpl) DeactivateService(ctx context.Context, id int64) error {
	if err := s.repo.DeactivateService(ctx, id); err != nil {
		s.logger.Error("ошибка деактивации услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка деактивации услуги")
	}

	s.invalidate(ctx)

	return nil
}

type cachedServiceList struct {
	Services []domain.Service `json:"services"`
	Total    int              `json:"total"`
}

func (s *CatalogServiceImpl) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	key := servicesCacheKey(filter)

	var cached cachedServiceList
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Services, cached.Total, nil
	}

	services, err := s.repo.ListServices(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка услуг", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка услуг")
	}

	total, err := s.repo.CountServices(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка подсчета услуг", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка услуг")
	}

	if err := s.cache.Set(ctx, key, cachedServiceList{Services: services, Total: total}); err != nil {
		s.logger.Warn("ошибка записи каталога в кэш", zap.Error(err))
	}

	return services, total, nil
}

func servicesCacheKey(filter domain.ServiceFilter) string {
	categoryID := int64(0)
	if filter.CategoryID != nil {
		categoryID = *filter.CategoryID
	}

	active := "any"
	if filter.IsActive != nil {
		active = fmt.Sprintf("%t", *filter.IsActive)
	}

	search := ""
	if filter.Search != nil {
		search = *filter.Search
	}

	return fmt.Sprintf(cacheKeyServicesFmt, categoryID, active, search, filter.Limit, filter.Offset)
}

func (s *CatalogServiceImpl) UploadServicePhoto(ctx context.Context, id int64, photo []byte, filename string) (string, error) {
	if s.fileStorage == nil {
		return "", errors.New("файловое хранилище не настроено")
	}

	service, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return "", errors.New("услуга не найдена")
	}

	url, err := s.fileStorage.UploadFile(ctx, photo, "services", filename)
	if err != nil {
		s.logger.Error("ошибка загрузки фото услуги", zap.Int64("id", id), zap.Error(err))
		return "", errors.New("ошибка загрузки фото")
	}

	if err := s.repo.UpdateServicePhoto(ctx, id, url); err != nil {
		s.logger.Error("ошибка сохранения фото услуги", zap.Int64("id", id), zap.Error(err))
		return "", errors.New("ошибка загрузки фото")
	}

	if service.PhotoURL != "" {
		if err := s.fileStorage.DeleteFile(ctx, service.PhotoURL); err != nil {
			s.logger.Warn("не удалось удалить старое фото услуги", zap.Error(err))
		}
	}

	s.invalidate(ctx)

	return url, nil
}

func (s *CatalogServiceImpl) CreateCategory(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("название категории не может быть пустым")
	}

	id, err := s.repo.CreateCategory(ctx, name)
	if err != nil {
		s.logger.Error("ошибка создания категории", zap.Error(err))
		return 0, errors.New("ошибка создания категории")
	}

	if err := s.cache.Delete(ctx, cacheKeyCategories); err != nil {
		s.logger.Warn("ошибка инвалидации кэша категорий", zap.Error(err))
	}

	return id, nil
}

func (s *CatalogServiceImpl) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	var cached []domain.ServiceCategory
	if err := s.cache.Get(ctx, cacheKeyCategories, &cached); err == nil {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.Error("ошибка получения категорий", zap.Error(err))
		return nil, errors.New("ошибка получения категорий")
	}

	if err := s.cache.Set(ctx, cacheKeyCategories, categories); err != nil {
		s.logger.Warn("ошибка записи категорий в кэш", zap.Error(err))
	}

	return categories, nil
}

// invalidate сбрасывает кэш списков услуг. Ключи списков параметризованы
// фильтром, поэтому здесь просто укорачивается TTL записей через удаление
// известных базовых ключей; остальные истекут сами.
func (s *CatalogServiceImpl) invalidate(ctx context.Context) {
	base := servicesCacheKey(domain.ServiceFilter{Limit: 50})
	if err := s.cache.Delete(ctx, base, cacheKeyCategories); err != nil {
		s.logger.Warn("ошибка инвалидации кэша каталога", zap.Error(err))
	}
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/validation"
)

// CategoryService управляет справочником категорий услуг.
type CategoryService struct {
	categories CategoryStore
	logger     *logrus.Logger
}

// NewCategoryService создаёт новый экземпляр.
func NewCategoryService(categories CategoryStore, logger *logrus.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// Create добавляет категорию. Название уникально в рамках локации.
func (s *CategoryService) Create(ctx context.Context, p Principal, name string, description *string) (*models.ServiceCategory, error) {
	name, err := validation.CategoryName(name)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, err.Error())
	}
	description, err = validation.Description(description)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, err.Error())
	}

	category := &models.ServiceCategory{
		LocationID:  p.LocationID,
		Name:        name,
		Description: description,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("категория создана")
	return category, nil
}

// List возвращает категории локации. Деактивированные видны только администратору.
func (s *CategoryService) List(ctx context.Context, p Principal, includeInactive bool) ([]models.ServiceCategory, error) {
	activeOnly := !includeInactive || p.Role != models.RoleAdmin
	categories, err := s.categories.List(ctx, p.LocationID, activeOnly)
	if err != nil {
		return nil, apperr.Internal("список категорий", err)
	}
	return categories, nil
}

// SetActive включает или выключает категорию. Физического удаления нет:
// на категории ссылаются исторические заявки.
func (s *CategoryService) SetActive(ctx context.Context, p Principal, id uuid.UUID, active bool) (*models.ServiceCategory, error) {
	category, err := s.categories.SetActive(ctx, p.LocationID, id, active)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": id,
		"is_active":   active,
	}).Info("категория переключена")
	return category, nil
}

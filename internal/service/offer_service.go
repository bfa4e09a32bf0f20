package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manacity/services-backend/internal/apperr"
	"github.com/manacity/services-backend/internal/models"
	"github.com/manacity/services-backend/internal/validation"
)

// OfferService реализует протокол предложений: отклик исполнителя,
// принятие с единственным победителем и отклонение с возвратом в OPEN.
// Все гонки разрешаются в транзакциях хранилища, сервис отвечает за
// валидацию, маскирование контактов и уведомления.
type OfferService struct {
	offers   OfferStore
	requests RequestStore
	notifier Notifier
	logger   *logrus.Logger
}

// NewOfferService создаёт новый экземпляр.
func NewOfferService(offers OfferStore, requests RequestStore, notifier Notifier, logger *logrus.Logger) *OfferService {
	return &OfferService{
		offers:   offers,
		requests: requests,
		notifier: notifier,
		logger:   logger,
	}
}

// Create добавляет предложение исполнителя к публичной заявке.
func (s *OfferService) Create(ctx context.Context, p Principal, requestID uuid.UUID, message string) (*models.ServiceOffer, error) {
	message, err := validation.OfferMessage(message)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, err.Error())
	}

	offer, err := s.offers.Create(ctx, p.LocationID, requestID, p.UserID, message)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"offer_id":   offer.ID,
	}).Info("предложение создано")
	return offer, nil
}

// Accept принимает предложение от имени владельца заявки. Побеждает ровно
// одно предложение, остальные ожидающие отклоняются, исполнитель получает
// уведомление о назначении.
func (s *OfferService) Accept(ctx context.Context, p Principal, requestID, offerID uuid.UUID) (*models.ServiceRequest, error) {
	req, providerID, err := s.offers.Accept(ctx, p.LocationID, requestID, offerID, p.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"offer_id":    offerID,
		"provider_id": providerID,
	}).Info("предложение принято")

	s.notifier.Notify(ctx, p.LocationID, providerID, models.NotificationServiceAssigned)
	return req, nil
}

// Reject отклоняет предложение от имени владельца заявки.
func (s *OfferService) Reject(ctx context.Context, p Principal, requestID, offerID uuid.UUID) (*models.ServiceOffer, error) {
	offer, err := s.offers.Reject(ctx, p.LocationID, requestID, offerID, p.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"offer_id":   offerID,
	}).Info("предложение отклонено")
	return offer, nil
}

// ListForRequest возвращает предложения заявки её владельцу или администратору.
// Телефон исполнителя раскрывается только у принятого предложения и только
// в статусах, открытых для контактов.
func (s *OfferService) ListForRequest(ctx context.Context, p Principal, requestID uuid.UUID) ([]models.OfferWithProvider, error) {
	req, err := s.requests.GetByID(ctx, p.LocationID, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != p.UserID && p.Role != models.RoleAdmin {
		return nil, apperr.New(apperr.KindForbidden, "предложения видны только владельцу заявки")
	}

	offers, err := s.offers.ListForRequest(ctx, requestID)
	if err != nil {
		return nil, apperr.Internal("список предложений", err)
	}

	for i := range offers {
		visible := offers[i].Status == models.OfferStatusAccepted && models.IsContactVisibleStatus(req.Status)
		if !visible {
			offers[i].ProviderPhone = nil
		}
	}
	return offers, nil
}

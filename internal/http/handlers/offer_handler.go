package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/manacity/services-backend/internal/dto"
	"github.com/manacity/services-backend/internal/http/handlers/common"
	"github.com/manacity/services-backend/internal/service"
)

// OfferHandler обслуживает протокол предложений.
type OfferHandler struct {
	offers *service.OfferService
}

// NewOfferHandler создаёт новый хэндлер.
func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// requestAndOffer разбирает пару параметров пути :id/:offerId.
func requestAndOffer(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	offerID, err := common.ParseUUIDParam(c, "offerId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return requestID, offerID, nil
}

// Create обрабатывает POST /requests/:id/offers.
func (h *OfferHandler) Create(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateOfferRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), principal, requestID, req.Message)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, offer)
}

// List обрабатывает GET /requests/:id/offers.
func (h *OfferHandler) List(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offers, err := h.offers.ListForRequest(c.Request.Context(), principal, requestID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, offers)
}

// Accept обрабатывает POST /requests/:id/offers/:offerId/accept.
func (h *OfferHandler) Accept(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, offerID, err := requestAndOffer(c)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.offers.Accept(c.Request.Context(), principal, requestID, offerID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, req)
}

// Reject обрабатывает POST /requests/:id/offers/:offerId/reject.
func (h *OfferHandler) Reject(c *gin.Context) {
	principal, err := common.CurrentPrincipal(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, offerID, err := requestAndOffer(c)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.offers.Reject(c.Request.Context(), principal, requestID, offerID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, offer)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/dto"
	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/mw"
)

const subscriptionResource = "subscription"

// PutSubscription handles the creation or replacement of the caller's
// browser subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in dto.SubscriptionInput
	if err := in.Decode(body); err != nil {
		respondError(c, err)
		return
	}

	sub := model.PushSubscription{
		Endpoint: in.Endpoint,
		P256DH:   in.P256DH,
		Auth:     in.Auth,
		UserID:   mw.CurrentUser(c).ID,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var in dto.UnsubscribeInput
	if err := in.Decode(body); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	sub, err := h.store.GetSubscription(ctx, in.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}
	if sub.UserID != mw.CurrentUser(c).ID {
		respondError(c, &apperr.NotFoundError{Resource: subscriptionResource, ID: in.Endpoint})
		return
	}
	if err := h.store.DeleteSubscription(ctx, in.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSubscription reports whether ?endpoint= is registered for the caller.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		respondError(c, apperr.FieldError("endpoint", "Este campo é obrigatório."))
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err != nil {
		respondError(c, err)
		return
	}
	if sub.UserID != mw.CurrentUser(c).ID {
		respondError(c, &apperr.NotFoundError{Resource: subscriptionResource, ID: endpoint})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint, "created_at": sub.CreatedAt.UTC()})
}

package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary Кошелек
// @Description Баллы, суммарные траты и текущий уровень лояльности
// @Tags Кошелек
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.WalletSummary "Кошелек с уровнем"
// @Failure 404 {object} errorResponseBody "Кошелек не найден"
// @Router /wallet [get]
func (h *Handler) getWalletSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	summary, err := h.services.Wallet.Summary(c.Request.Context(), userID)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, summary)
}

// @Summary История баллов
// @Tags Кошелек
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} successResponseBody "Операции с баллами"
// @Router /wallet/history [get]
func (h *Handler) getPointsHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := h.services.Wallet.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, entries)
}

// @Summary Уровни лояльности
// @Description Все уровни программы лояльности с порогами трат
// @Tags Кошелек
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} successResponseBody "Уровни"
// @Router /wallet/tiers [get]
func (h *Handler) getTiers(c *gin.Context) {
	tiers, err := h.services.Wallet.Tiers(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, tiers)
}

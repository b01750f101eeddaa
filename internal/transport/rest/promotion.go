package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

// @Summary Публичные акции
// @Description Каталог активных публичных акций без учета персональных условий
// @Tags Акции
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} successResponseBody "Акции"
// @Router /promotions [get]
func (h *Handler) getPromotions(c *gin.Context) {
	active := true
	public := true

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	promotions, err := h.services.Promotion.List(c.Request.Context(), domain.PromotionFilter{
		IsActive: &active,
		IsPublic: &public,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, promotions)
}

type selectionRequest struct {
	Items []domain.SelectionItem `json:"items"`
}

// @Summary Доступные акции
// @Description Акции, применимые пользователем к выбранным услугам
// @Tags Акции
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body selectionRequest true "Выбранные услуги (можно пустой список)"
// @Success 200 {object} successResponseBody "Применимые акции"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /promotions/available [post]
func (h *Handler) getAvailablePromotions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input selectionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	promotions, err := h.services.Promotion.AvailableForUser(c.Request.Context(), userID, input.Items)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, promotions)
}

type quoteRequest struct {
	Items       []domain.SelectionItem `json:"items" binding:"required,min=1,dive"`
	PromotionID *int64                 `json:"promotion_id"`
}

// @Summary Расчет итога корзины
// @Description Считает сумму, скидку и итог с учетом выбранной акции
// @Tags Акции
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body quoteRequest true "Корзина и акция"
// @Success 200 {object} domain.CheckoutQuote "Расчет"
// @Failure 400 {object} errorResponseBody "Акция неприменима"
// @Router /promotions/quote [post]
func (h *Handler) getCheckoutQuote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input quoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	quote, err := h.services.Promotion.Quote(c.Request.Context(), userID, input.Items, input.PromotionID)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	successResponse(c, http.StatusOK, quote)
}

// @Summary Обмен баллов на ваучер
// @Description Списывает баллы и выдает ваучер, операция атомарна
// @Tags Акции
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID акции"
// @Success 200 {object} messageResponseType "Ваучер получен"
// @Failure 400 {object} errorResponseBody "Недостаточно баллов"
// @Router /promotions/{id}/redeem [post]
func (h *Handler) redeemPromotion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID акции")
		return
	}

	if err := h.services.Promotion.Redeem(c.Request.Context(), userID, id); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "ваучер получен")
}

// @Summary Каталог обмена баллов
// @Description Приватные акции, которые можно получить за баллы
// @Tags Акции
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} successResponseBody "Акции за баллы"
// @Router /promotions/redeemable [get]
func (h *Handler) getRedeemablePromotions(c *gin.Context) {
	promotions, err := h.services.Promotion.ListRedeemable(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, promotions)
}

// @Summary Мои ваучеры
// @Description Ваучеры, обмененные пользователем на баллы
// @Tags Акции
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} successResponseBody "Ваучеры"
// @Router /promotions/redeemed [get]
func (h *Handler) getRedeemedVouchers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	vouchers, err := h.services.Promotion.ListRedeemed(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, vouchers)
}

// @Summary Создание акции
// @Tags Акции
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreatePromotionDTO true "Данные акции"
// @Success 201 {object} successResponseBody "ID акции"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /promotions [post]
func (h *Handler) createPromotion(c *gin.Context) {
	var input domain.CreatePromotionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Promotion.Create(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Обновление акции
// @Tags Акции
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID акции"
// @Param input body domain.UpdatePromotionDTO true "Обновляемые поля"
// @Success 200 {object} messageResponseType "Акция обновлена"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /promotions/{id} [put]
func (h *Handler) updatePromotion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID акции")
		return
	}

	var input domain.UpdatePromotionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Promotion.Update(c.Request.Context(), id, input); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "акция обновлена")
}

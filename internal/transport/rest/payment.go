package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

// @Summary Оплата группы записей
// @Description Наличные подтверждаются сразу, карта и кошелек дают redirect_url
// @Tags Платежи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.ProcessPaymentDTO true "Данные платежа"
// @Success 200 {object} domain.PaymentResult "Результат оплаты"
// @Failure 400 {object} errorResponseBody "Группа записей не найдена или уже оплачена"
// @Router /payments [post]
func (h *Handler) processPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.ProcessPaymentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	result, err := h.services.Payment.Process(c.Request.Context(), userID, input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	successResponse(c, http.StatusOK, result)
}

// stripeWebhook принимает события платежного провайдера. Тело читается
// целиком до разбора: подпись считается от сырых байт.
func (h *Handler) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("не удалось прочитать тело вебхука", zap.Error(err))
		badRequestResponse(c, "не удалось прочитать тело запроса")
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.services.Payment.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		h.logger.Warn("вебхук отклонен", zap.Error(err))
		badRequestResponse(c, "вебхук отклонен")
		return
	}

	c.Status(http.StatusOK)
}

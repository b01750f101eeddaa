package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

// @Summary Создание отзыва
// @Description Отзыв можно оставить только на завершенную запись, один раз
// @Tags Отзывы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateReviewDTO true "Данные отзыва"
// @Success 201 {object} successResponseBody "ID отзыва"
// @Failure 400 {object} errorResponseBody "Отзыв уже оставлен или запись не завершена"
// @Router /reviews [post]
func (h *Handler) createReview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateReviewDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Review.Create(c.Request.Context(), userID, input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Список отзывов
// @Tags Отзывы
// @Produce json
// @Param service_id query int false "Фильтр по услуге"
// @Param min_rating query int false "Минимальная оценка"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} successResponseBody "Отзывы"
// @Router /reviews [get]
func (h *Handler) getReviews(c *gin.Context) {
	var filter domain.ReviewFilter

	if serviceIDStr := c.Query("service_id"); serviceIDStr != "" {
		serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "некорректный ID услуги")
			return
		}
		filter.ServiceID = &serviceID
	}

	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		minRating, err := strconv.Atoi(minRatingStr)
		if err != nil || minRating < 1 || minRating > 5 {
			badRequestResponse(c, "некорректная минимальная оценка")
			return
		}
		filter.MinRating = &minRating
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	reviews, err := h.services.Review.List(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, reviews)
}

// @Summary Отзывы по услуге
// @Tags Отзывы
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} successResponseBody "Отзывы услуги"
// @Router /services/{id}/reviews [get]
func (h *Handler) getServiceReviews(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	reviews, err := h.services.Review.List(c.Request.Context(), domain.ReviewFilter{
		ServiceID: &serviceID,
		Limit:     100,
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, reviews)
}

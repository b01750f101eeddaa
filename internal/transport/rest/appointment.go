package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

// @Summary Свободные слоты
// @Description Сетка слотов на дату с отметкой занятости
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param date query string true "Дата (YYYY-MM-DD или DD-MM-YYYY)"
// @Success 200 {object} successResponseBody "Слоты"
// @Failure 400 {object} errorResponseBody "Неверная дата"
// @Router /appointments/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	date, err := domain.ParseCalendarDate(c.Query("date"))
	if err != nil {
		badRequestResponse(c, "неверный формат даты")
		return
	}

	slots, err := h.services.Booking.FreeSlots(c.Request.Context(), userID, date)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Оформление записи
// @Description Создает по записи на каждую единицу каждой выбранной услуги
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateBookingDTO true "Корзина, дата и время"
// @Success 201 {object} successResponseBody "Созданные записи"
// @Failure 400 {object} errorResponseBody "Ошибка валидации или занятый слот"
// @Router /appointments [post]
func (h *Handler) createBooking(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateBookingDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointments, err := h.services.Appointment.CreateBooking(c.Request.Context(), userID, input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, appointments)
}

// @Summary Мои записи
// @Description Записи пользователя, разложенные на предстоящие, историю и напоминания
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.AppointmentBuckets "Корзины записей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Router /appointments/me [get]
func (h *Handler) getMyAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	buckets, err := h.services.Appointment.Buckets(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, buckets)
}

// @Summary Запись по ID
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Запись"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	role, _ := getUserRole(c)
	if appointment.UserID != userID && role == domain.UserRoleClient {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Отмена записи
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID записи"
// @Success 204 {object} nil "Запись отменена"
// @Failure 400 {object} errorResponseBody "Запись нельзя отменить"
// @Router /appointments/{id} [delete]
func (h *Handler) cancelAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), userID, id); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Список записей
// @Description Все записи с фильтрами (для сотрудников)
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param user_id query int false "ID клиента"
// @Param service_id query int false "ID услуги"
// @Param status query string false "Статус записи"
// @Param date_from query string false "Дата с (YYYY-MM-DD)"
// @Param date_to query string false "Дата по (YYYY-MM-DD)"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Записи"
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	filter := domain.AppointmentFilter{}

	if userStr := c.Query("user_id"); userStr != "" {
		userID, err := strconv.ParseInt(userStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "некорректный ID клиента")
			return
		}
		filter.UserID = &userID
	}

	if serviceStr := c.Query("service_id"); serviceStr != "" {
		serviceID, err := strconv.ParseInt(serviceStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "некорректный ID услуги")
			return
		}
		filter.ServiceID = &serviceID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.AppointmentStatus(statusStr)
		filter.Status = &status
	}

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		if date, err := domain.ParseCalendarDate(dateFrom); err == nil {
			start := date.StartOfDay()
			filter.StartDate = &start
		}
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		if date, err := domain.ParseCalendarDate(dateTo); err == nil {
			end := date.StartOfDay().Add(24*time.Hour - time.Second)
			filter.EndDate = &end
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, appointments, total, page, limit)
}

// @Summary Смена статуса записи
// @Description Переводит запись в новый статус (для сотрудников)
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body object true "Новый статус"
// @Success 200 {object} messageResponseType "Статус обновлен"
// @Failure 400 {object} errorResponseBody "Недопустимый статус"
// @Router /appointments/{id}/status [put]
func (h *Handler) updateAppointmentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	var input struct {
		Status domain.AppointmentStatus `json:"status" binding:"required,oneof=pending upcoming in-progress completed cancelled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	if err := h.services.Appointment.UpdateStatus(c.Request.Context(), appointment.ID, input.Status); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "статус обновлен")
}

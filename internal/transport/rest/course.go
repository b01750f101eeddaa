package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

type courseResponse struct {
	Course   domain.TreatmentCourse `json:"course"`
	Progress domain.CourseProgress  `json:"progress"`
}

// @Summary Мои курсы процедур
// @Description Курсы клиента с прогрессом; фильтр completed считается по сеансам
// @Tags Курсы
// @Security ApiKeyAuth
// @Produce json
// @Param completed query bool false "Только завершенные или только активные"
// @Success 200 {object} successResponseBody "Курсы с прогрессом"
// @Router /courses/me [get]
func (h *Handler) getMyCourses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var completed *bool
	if completedStr := c.Query("completed"); completedStr != "" {
		value, err := strconv.ParseBool(completedStr)
		if err != nil {
			badRequestResponse(c, "некорректное значение completed")
			return
		}
		completed = &value
	}

	courses, progresses, err := h.services.Course.ListByClient(c.Request.Context(), userID, completed)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]courseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, courseResponse{Course: courses[i], Progress: progresses[i]})
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary Курс по ID
// @Tags Курсы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID курса"
// @Success 200 {object} courseResponse "Курс с прогрессом"
// @Failure 404 {object} errorResponseBody "Курс не найден"
// @Router /courses/{id} [get]
func (h *Handler) getCourseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID курса")
		return
	}

	course, progress, err := h.services.Course.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	role, _ := getUserRole(c)
	if course.ClientID != userID && role == domain.UserRoleClient {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, courseResponse{Course: *course, Progress: *progress})
}

// @Summary Создание курса
// @Description Создает курс процедур с заданным числом сеансов (для сотрудников)
// @Tags Курсы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateCourseDTO true "Данные курса"
// @Success 201 {object} successResponseBody "ID курса"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /courses [post]
func (h *Handler) createCourse(c *gin.Context) {
	var input domain.CreateCourseDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Course.Create(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Обновление сеанса курса
// @Description Меняет статус, дату и заметки сеанса (для сотрудников)
// @Tags Курсы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID курса"
// @Param number path int true "Номер сеанса"
// @Param input body domain.UpdateCourseSessionDTO true "Обновляемые поля"
// @Success 200 {object} messageResponseType "Сеанс обновлен"
// @Failure 400 {object} errorResponseBody "Сеанс не найден"
// @Router /courses/{id}/sessions/{number} [put]
func (h *Handler) updateCourseSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID курса")
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		badRequestResponse(c, "некорректный номер сеанса")
		return
	}

	var input domain.UpdateCourseSessionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Course.UpdateSession(c.Request.Context(), id, number, input); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "сеанс обновлен")
}

package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lotus/internal/domain"
)

// @Summary Список категорий услуг
// @Tags Каталог
// @Produce json
// @Success 200 {object} successResponseBody "Категории"
// @Router /categories [get]
func (h *Handler) getCategories(c *gin.Context) {
	categories, err := h.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, categories)
}

// @Summary Создание категории
// @Tags Каталог
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body object true "Название категории"
// @Success 201 {object} successResponseBody "ID категории"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /categories [post]
func (h *Handler) createCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.CreateCategory(c.Request.Context(), input.Name)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Список услуг
// @Description Каталог услуг с фильтром по категории и поиском
// @Tags Каталог
// @Produce json
// @Param category_id query int false "ID категории"
// @Param search query string false "Поиск по названию"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse "Услуги"
// @Router /services [get]
func (h *Handler) getServices(c *gin.Context) {
	filter := domain.ServiceFilter{}

	if categoryStr := c.Query("category_id"); categoryStr != "" {
		categoryID, err := strconv.ParseInt(categoryStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "некорректный ID категории")
			return
		}
		filter.CategoryID = &categoryID
	}

	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	// Клиентам виден только активный каталог.
	active := true
	filter.IsActive = &active

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	services, total, err := h.services.Catalog.ListServices(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, services, total, page, limit)
}

// @Summary Услуга по ID
// @Tags Каталог
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} domain.Service "Услуга"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Router /services/{id} [get]
func (h *Handler) getServiceByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	service, err := h.services.Catalog.GetServiceByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, service)
}

// @Summary Создание услуги
// @Tags Каталог
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateServiceDTO true "Данные услуги"
// @Success 201 {object} successResponseBody "ID услуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /services [post]
func (h *Handler) createService(c *gin.Context) {
	var input domain.CreateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.CreateService(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Обновление услуги
// @Tags Каталог
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Param input body domain.UpdateServiceDTO true "Обновляемые поля"
// @Success 200 {object} messageResponseType "Услуга обновлена"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /services/{id} [put]
func (h *Handler) updateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	var input domain.UpdateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Catalog.UpdateService(c.Request.Context(), id, input); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "услуга обновлена")
}

// @Summary Деактивация услуги
// @Description Убирает услугу из каталога, история записей сохраняется
// @Tags Каталог
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID услуги"
// @Success 204 {object} nil "Услуга деактивирована"
// @Router /services/{id} [delete]
func (h *Handler) deactivateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	if err := h.services.Catalog.DeactivateService(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Загрузка фото услуги
// @Tags Каталог
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID услуги"
// @Param photo formData file true "Файл изображения"
// @Success 200 {object} successResponseBody "URL фото"
// @Failure 400 {object} errorResponseBody "Ошибка загрузки"
// @Router /services/{id}/photo [post]
func (h *Handler) uploadServicePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл не передан")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("ошибка чтения файла", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "ошибка чтения файла")
		return
	}

	url, err := h.services.Catalog.UploadServicePhoto(c.Request.Context(), id, data, header.Filename)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]string{"photo_url": url})
}

package countries

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/logger"
	"compass/pkg/errors"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		countries := v1.Group("/countries")
		{
			countries.GET("", h.ListCountries)
			countries.POST("", h.AddCountry)
			countries.GET("/:code", h.GetCountry)
			countries.GET("/:code/designation", h.GetDesignation)
		}
	}
}

// ListCountries godoc
// @Summary      List registered countries
// @Tags         countries
// @Produce      json
// @Success      200  {array}    Country
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /countries [get]
func (h *Handler) ListCountries(c *gin.Context) {
	countries, err := h.Service.ListCountries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if countries == nil {
		countries = []Country{}
	}
	c.JSON(http.StatusOK, countries)
}

// AddCountry godoc
// @Summary      Register a country with its designation labels
// @Description  Upserts the country record and writes one country-setup sentinel rule row per designation label
// @Tags         countries
// @Accept       json
// @Produce      json
// @Param        country  body       AddCountryRequest  true  "Country data"
// @Success      201   {object}   Country
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /countries [post]
func (h *Handler) AddCountry(c *gin.Context) {
	var req AddCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	country, err := h.Service.AddCountry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, country)
}

// GetCountry godoc
// @Summary      Get a registered country by code
// @Tags         countries
// @Produce      json
// @Param        code  path      string  true  "Country code"
// @Success      200  {object}   Country
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /countries/{code} [get]
func (h *Handler) GetCountry(c *gin.Context) {
	country, err := h.Service.GetCountry(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

// GetDesignation godoc
// @Summary      Resolve CA/CS designation labels for a country
// @Description  Consults the country registry, then the rule store, then the static fallback table
// @Tags         countries
// @Produce      json
// @Param        code  path      string  true  "Country code"
// @Success      200  {object}   Designation
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /countries/{code}/designation [get]
func (h *Handler) GetDesignation(c *gin.Context) {
	designation, err := h.Service.GetDesignation(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, designation)
}

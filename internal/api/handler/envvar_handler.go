package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

type envVarRequest struct {
	Key   string `json:"key" validate:"required,max=128"`
	Value string `json:"value"`
}

// EnvVarHandler handles the environment-variable utility endpoints.
type EnvVarHandler struct {
	repo ports.EnvVarRepository
}

func NewEnvVarHandler(repo ports.EnvVarRepository) *EnvVarHandler {
	return &EnvVarHandler{repo: repo}
}

// Put handles PUT /v1/envvars — create or replace one variable.
//
// @Summary      Set an environment variable
// @Tags         envvars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      envVarRequest  true  "Key/value pair"
// @Success      200   {object}  domain.EnvironmentVariable
// @Failure      400   {object}  map[string]string
// @Router       /v1/envvars [put]
func (h *EnvVarHandler) Put(c echo.Context) error {
	var req envVarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := &domain.EnvironmentVariable{Key: req.Key, Value: req.Value}
	if err := h.repo.Upsert(c.Request().Context(), v); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Get handles GET /v1/envvars/:key.
//
// @Summary      Fetch an environment variable
// @Tags         envvars
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Variable key"
// @Success      200  {object}  domain.EnvironmentVariable
// @Failure      404  {object}  map[string]string
// @Router       /v1/envvars/{key} [get]
func (h *EnvVarHandler) Get(c echo.Context) error {
	v, err := h.repo.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// List handles GET /v1/envvars.
//
// @Summary      List environment variables
// @Tags         envvars
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.EnvironmentVariable
// @Router       /v1/envvars [get]
func (h *EnvVarHandler) List(c echo.Context) error {
	vars, err := h.repo.List(c.Request().Context())
	if err != nil {
		return err
	}
	if vars == nil {
		vars = []*domain.EnvironmentVariable{}
	}
	return c.JSON(http.StatusOK, vars)
}

// Delete handles DELETE /v1/envvars/:key.
//
// @Summary      Delete an environment variable
// @Tags         envvars
// @Security     BearerAuth
// @Param        key  path  string  true  "Variable key"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/envvars/{key} [delete]
func (h *EnvVarHandler) Delete(c echo.Context) error {
	if err := h.repo.Delete(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

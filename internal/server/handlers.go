package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/labstack/echo/v4"

	"statuspact/internal/core"
)

// Handler holds the HTTP handlers
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new handler. A nil logger uses slog.Default().
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger: logger,
	}
}

// Status handles GET /provider.json
//
// valid_date must be a parsable date-time; its value does not change the
// payload, which is always the fixed fixture.
func (h *Handler) Status(c echo.Context) error {
	raw := c.QueryParam(core.QueryValidDate)
	if raw == "" {
		return handleError(c, core.NewInvalidRequestError("missing required query parameter: "+core.QueryValidDate, nil))
	}

	validDate, err := core.ParseTime(raw)
	if err != nil {
		return handleError(c, err)
	}
	h.logger.Debug("status requested",
		"valid_date", validDate,
		"request_id", core.GetRequestID(c.Request().Context()),
	)

	body, err := json.MarshalIndent(core.FixedPayload(), "", "  ")
	if err != nil {
		return handleError(c, err)
	}

	c.Response().Header().Set("ETag", etag(body))
	return c.Blob(http.StatusOK, core.ContentTypeJSON, body)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// etag returns a strong validator for body.
func etag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// handleError converts contract errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var contractErr *core.ContractError
	if errors.As(err, &contractErr) {
		return c.JSON(contractErr.HTTPStatusCode(), contractErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}

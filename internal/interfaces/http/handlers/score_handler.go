package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/internal/application/service"
	"github.com/turtacn/riskscore360/internal/domain/models"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/emitter"
	"github.com/turtacn/riskscore360/internal/infrastructure/signal"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// ScoreHandler serves the scoring API.
type ScoreHandler struct {
	svc           service.ScoringAppService
	maxBodyBytes  int64
	defaultFormat constants.OutputFormat
	log           logger.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(svc service.ScoringAppService, maxBodyBytes int64, defaultFormat constants.OutputFormat, log logger.Logger) *ScoreHandler {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.MaxDocumentBytes
	}
	if defaultFormat == "" {
		defaultFormat = constants.OutputFormatJSON
	}
	return &ScoreHandler{svc: svc, maxBodyBytes: maxBodyBytes, defaultFormat: defaultFormat, log: log.WithComponent("score_handler")}
}

// Score godoc
// @Summary      Score a raw signal document
// @Tags         scoring
// @Accept       json
// @Produce      json,yaml
// @Param        format  query  string  false  "json or yaml"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/v1/score [post]
func (h *ScoreHandler) Score(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	loaded, err := signal.NewBytesSource(body, "http", h.log).Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.svc.Score(c.Request.Context(), loaded)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header(constants.HeaderReportID, result.ReportID)
	h.respondResult(c, http.StatusOK, result)
}

// ScoreBatch godoc
// @Summary      Score several raw signal documents
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/v1/score/batch [post]
func (h *ScoreHandler) ScoreBatch(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.BatchScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(c, errors.ErrInvalidRequest("batch body must be a JSON object with a documents array").WithCause(err))
		return
	}
	if appErr := utils.ValidateStruct(req); appErr != nil {
		respondError(c, appErr)
		return
	}

	sources := make([]domainService.SignalSource, len(req.Documents))
	for i, doc := range req.Documents {
		sources[i] = signal.NewBytesSource(doc, fmt.Sprintf("batch[%d]", i), h.log)
	}

	items, err := h.svc.ScoreBatch(c.Request.Context(), sources)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(dto.NewBatchResponse(items), RequestID(c)))
}

// GetReport godoc
// @Summary      Fetch a recently computed report
// @Tags         scoring
// @Produce      json,yaml
// @Param        id  path  string  true  "report id"
// @Success      200  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/v1/reports/{id} [get]
func (h *ScoreHandler) GetReport(c *gin.Context) {
	result, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondResult(c, http.StatusOK, result)
}

// respondResult writes the enveloped result as JSON, or the bare result as
// YAML when requested through ?format=yaml or the configured default.
func (h *ScoreHandler) respondResult(c *gin.Context, status int, result *models.ScoreResult) {
	format := constants.OutputFormat(c.DefaultQuery("format", string(h.defaultFormat)))
	if format != constants.OutputFormatYAML {
		c.JSON(status, dto.SuccessResponse(result, RequestID(c)))
		return
	}
	data, err := emitter.Encode(result, format)
	if err != nil {
		respondError(c, errors.WrapError(err, constants.ErrCodeServerError, "failed to encode report"))
		return
	}
	c.Data(status, "application/yaml; charset=utf-8", data)
}

func (h *ScoreHandler) readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewError(constants.ErrCodeInvalidRequest, http.StatusRequestEntityTooLarge,
				"The request body exceeds the maximum document size.",
				fmt.Sprintf("request body exceeds %d bytes", h.maxBodyBytes))
		}
		return nil, errors.ErrInvalidRequest("failed to read request body").WithCause(err)
	}
	return body, nil
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/tabular"
	"github.com/peopleforge/peopleforge/modules/onboarding/presentation/mappers"
	"github.com/peopleforge/peopleforge/modules/onboarding/services"
	"github.com/peopleforge/peopleforge/pkg/application"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/configuration"
	"github.com/peopleforge/peopleforge/pkg/constants"
	"github.com/peopleforge/peopleforge/pkg/middleware"
	"github.com/peopleforge/peopleforge/pkg/serrors"
)

type confirmRequest struct {
	AcceptedFixIDs []string `json:"acceptedFixIds" validate:"omitempty,dive,required"`
}

func (d *confirmRequest) Ok(ctx context.Context) (serrors.ValidationErrors, bool) {
	if err := constants.Validate.StructCtx(ctx, d); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return serrors.ProcessValidatorErrors(errs), false
		}
		return serrors.ValidationErrors{"AcceptedFixIDs": "invalid"}, false
	}
	return nil, true
}

type ImportController struct {
	imports  *services.ImportService
	basePath string
}

func NewImportController(app application.Application) application.Controller {
	return &ImportController{
		imports:  app.Service(services.ImportService{}).(*services.ImportService),
		basePath: "/onboarding/api",
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	conf := configuration.Use()

	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireActor())
	router.HandleFunc("/imports/{id}:confirm", c.Confirm).Methods(http.MethodPost)
	router.HandleFunc("/imports/history", c.History).Methods(http.MethodGet)
	router.HandleFunc("/imports/template", c.Template).Methods(http.MethodGet)

	// Analyze carries the upload and the oracle call, so it alone is
	// rate-limited.
	analyzeRouter := r.PathPrefix(c.basePath).Subrouter()
	analyzeRouter.Use(middleware.RequireActor(), middleware.RateLimit(conf.RateLimit.AnalyzePerMinute))
	analyzeRouter.HandleFunc("/imports:analyze", c.Analyze).Methods(http.MethodPost)
}

func (c *ImportController) Analyze(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()

	// One extra MiB of headroom for multipart framing; the parser enforces
	// the real ceiling while reading the part.
	r.Body = http.MaxBytesReader(w, r.Body, conf.Import.MaxUploadBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "PARSE_FAILED", "multipart form must carry a 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	sess, err := c.imports.Analyze(r.Context(), header.Filename, file)
	if err != nil {
		var parseErr *tabular.ParseError
		switch {
		case errors.As(err, &parseErr):
			c.writeParseError(w, r, parseErr)
		case errors.Is(err, composables.ErrNoActor):
			writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "caller identity is required")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, mappers.SessionToAnalyzeResponse(sess))
}

func (c *ImportController) writeParseError(w http.ResponseWriter, r *http.Request, parseErr *tabular.ParseError) {
	switch parseErr.Kind {
	case tabular.ErrKindTooLarge:
		writeAPIError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", parseErr.Message)
	case tabular.ErrKindUnsupportedType:
		writeAPIError(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", parseErr.Message)
	default:
		writeAPIError(w, r, http.StatusBadRequest, "PARSE_FAILED", parseErr.Message)
	}
}

func (c *ImportController) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "invalid session id")
		return
	}

	var dto confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(r.Context()); !ok {
		message := "validation failed"
		for _, v := range errs {
			message = v
			break
		}
		writeAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", message)
		return
	}

	result, err := c.imports.Confirm(r.Context(), id, dto.AcceptedFixIDs)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
		case errors.Is(err, session.ErrExpired):
			writeAPIError(w, r, http.StatusGone, "SESSION_EXPIRED", "session has expired")
		case errors.Is(err, session.ErrAlreadyConfirmed):
			writeAPIError(w, r, http.StatusConflict, "ALREADY_CONFIRMED", "session was already confirmed")
		case errors.Is(err, session.ErrFixNotFound):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "FIX_NOT_FOUND", err.Error())
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, mappers.ConfirmResultToResponse(result))
}

func (c *ImportController) History(w http.ResponseWriter, r *http.Request) {
	params := composables.UsePaginated(r)
	records, err := c.imports.History(r.Context(), params.Limit, params.Offset)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	items := make([]mappers.HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, mappers.RecordToHistoryItem(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *ImportController) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="onboarding-template.xlsx"`)
	if err := tabular.WriteTemplate(w); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("template write failed")
	}
}

package handler

import (
	"net/http"

	"formsapi/internal/model"
	"formsapi/internal/service"
	"formsapi/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// FormHandler handles form and result endpoints
type FormHandler struct {
	formSvc   *service.FormService
	resultSvc *service.ResultService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService, resultSvc *service.ResultService) *FormHandler {
	return &FormHandler{
		formSvc:   formSvc,
		resultSvc: resultSvc,
	}
}

// Create handles POST /forms
// @Summary Create a form
// @Tags forms
// @Accept json
// @Produce json
// @Param body body model.CreateFormRequest true "Form definition"
// @Success 201 {object} model.Form
// @Failure 400 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFormRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form, err := h.formSvc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /forms
// @Summary List forms without answers
// @Tags forms
// @Produce json
// @Success 200 {array} model.Form
// @Router /forms [get]
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, forms)
}

// Get handles GET /forms/{id}
// @Summary Get a form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} model.Form
// @Failure 400 {object} ErrorResponse "Malformed id"
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// SubmitResult handles POST /forms/{id}/results
// @Summary Submit answers
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form ID"
// @Param body body model.SubmitResultRequest true "Answers"
// @Success 201 {object} model.Result
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/results [post]
func (h *FormHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitResultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.resultSvc.Submit(r.Context(), mux.Vars(r)["id"], middleware.GetUser(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Results handles GET /forms/{id}/results
// @Summary Expanded results of a form
// @Tags results
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {array} model.ExpandedResult
// @Failure 400 {object} ErrorResponse "Malformed id"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Inconsistent stored data"
// @Router /forms/{id}/results [get]
func (h *FormHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultSvc.Expand(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/zmikicdroin/jobtracker/internal/storage"
	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

// memory ceiling for multipart parsing; larger parts spill to temp files
const maxMultipartMemory = 10 << 20

type ApplicationsHandler struct {
	appRepo repository.ApplicationRepo
	files   *storage.Store
}

func NewApplicationsHandler(ar repository.ApplicationRepo, files *storage.Store) *ApplicationsHandler {
	return &ApplicationsHandler{appRepo: ar, files: files}
}

type createApplicationResponse struct {
	Message       string `json:"message"`
	ApplicationID int64  `json:"application_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// applicationForm holds the validated mutable fields shared by create and
// update.
type applicationForm struct {
	company         string
	applicationDate string
	coverLetter     string
	status          string
	acceptedDate    *string
	rejectedDate    *string
	interviewDate   *string
}

// parseApplicationForm reads and validates the multipart form fields. It
// writes the error response itself and returns false when the request is bad.
func parseApplicationForm(w http.ResponseWriter, r *http.Request) (*applicationForm, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isMaxBytes(err) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return nil, false
		}
		writeMessage(w, http.StatusBadRequest, "Invalid form data")
		return nil, false
	}

	f := &applicationForm{
		company:         strings.TrimSpace(r.FormValue("company")),
		applicationDate: r.FormValue("application_date"),
		coverLetter:     r.FormValue("cover_letter"),
		status:          models.NormalizeStatus(r.FormValue("status")),
		acceptedDate:    optionalFormValue(r, "accepted_date"),
		rejectedDate:    optionalFormValue(r, "rejected_date"),
		interviewDate:   optionalFormValue(r, "interview_date"),
	}

	if f.company == "" || f.applicationDate == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields: company, application_date")
		return nil, false
	}
	if _, err := time.Parse(models.DateLayout, f.applicationDate); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return nil, false
	}

	return f, true
}

// optionalFormValue returns nil for an absent or empty form field. The
// status-transition dates are stored as-is, without format validation.
func optionalFormValue(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}

// cvUpload returns the uploaded CV part, if any.
func cvUpload(r *http.Request) (multipart.File, string, bool) {
	file, header, err := r.FormFile("cv")
	if err != nil || header.Filename == "" {
		return nil, "", false
	}
	return file, header.Filename, true
}

func (h *ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	form, ok := parseApplicationForm(w, r)
	if !ok {
		return
	}

	var cvFilename *string
	if file, originalName, ok := cvUpload(r); ok {
		defer file.Close()
		name, err := h.files.Save(userID, file, originalName)
		if err != nil {
			if errors.Is(err, storage.ErrNotPDF) {
				writeMessage(w, http.StatusBadRequest, "Only PDF files are allowed for CV")
				return
			}
			logger.Error("failed to store attachment", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to create application")
			return
		}
		cvFilename = &name
	}

	a := &models.Application{
		UserID:          userID,
		Company:         form.company,
		ApplicationDate: form.applicationDate,
		CoverLetter:     form.coverLetter,
		CVFilename:      cvFilename,
		Status:          form.status,
		AcceptedDate:    form.acceptedDate,
		RejectedDate:    form.rejectedDate,
		InterviewDate:   form.interviewDate,
	}

	id, err := h.appRepo.CreateApplication(r.Context(), a)
	if err != nil {
		logger.Error("failed to create application", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create application")
		return
	}

	writeJSON(w, createApplicationResponse{
		Message:       "Application created successfully",
		ApplicationID: id,
	}, http.StatusCreated)
}

func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	apps, err := h.appRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list applications", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	writeJSON(w, apps, http.StatusOK)
}

func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	a, err := h.appRepo.GetByID(r.Context(), userID, id)
	if err != nil {
		logger.Error("failed to fetch application", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch application")
		return
	}
	if a == nil {
		writeMessage(w, http.StatusNotFound, "Application not found")
		return
	}

	writeJSON(w, a, http.StatusOK)
}

func (h *ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	form, ok := parseApplicationForm(w, r)
	if !ok {
		return
	}

	a := &models.Application{
		ID:              id,
		UserID:          userID,
		Company:         form.company,
		ApplicationDate: form.applicationDate,
		CoverLetter:     form.coverLetter,
		Status:          form.status,
		AcceptedDate:    form.acceptedDate,
		RejectedDate:    form.rejectedDate,
		InterviewDate:   form.interviewDate,
	}

	replaceCV := false
	if file, originalName, ok := cvUpload(r); ok {
		defer file.Close()

		oldCV, err := h.appRepo.GetCVFilename(r.Context(), userID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, "Application not found")
				return
			}
			logger.Error("failed to fetch attachment name", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to update application")
			return
		}

		old := ""
		if oldCV != nil {
			old = *oldCV
		}
		name, err := h.files.Replace(userID, old, file, originalName)
		if err != nil {
			if errors.Is(err, storage.ErrNotPDF) {
				writeMessage(w, http.StatusBadRequest, "Only PDF files are allowed for CV")
				return
			}
			logger.Error("failed to replace attachment", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to update application")
			return
		}
		a.CVFilename = &name
		replaceCV = true
	}

	if err := h.appRepo.UpdateApplication(r.Context(), a, replaceCV); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// the row vanished between the attachment swap and the update
			if replaceCV && a.CVFilename != nil {
				h.files.Remove(*a.CVFilename)
			}
			writeMessage(w, http.StatusNotFound, "Application not found")
			return
		}
		logger.Error("failed to update application", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to update application")
		return
	}

	writeMessage(w, http.StatusOK, "Application updated successfully")
}

func (h *ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	cvFilename, err := h.appRepo.DeleteApplication(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Application not found")
			return
		}
		logger.Error("failed to delete application", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to delete application")
		return
	}

	// best-effort cleanup after the row is gone
	if cvFilename != nil {
		h.files.Remove(*cvFilename)
	}

	writeMessage(w, http.StatusOK, "Application deleted successfully")
}

func (h *ApplicationsHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Status == "" {
		writeMessage(w, http.StatusBadRequest, "Missing status field")
		return
	}
	// unlike create/update, an unknown status is rejected here, not normalized
	if !models.ValidStatus(req.Status) {
		writeMessage(w, http.StatusBadRequest, "Invalid status. Must be: pending, accepted, rejected, or interview")
		return
	}

	if err := h.appRepo.SetStatus(r.Context(), userID, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Application not found")
			return
		}
		logger.Error("failed to update status", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	writeJSON(w, statusResponse{Message: "Status updated successfully", Status: req.Status}, http.StatusOK)
}

func (h *ApplicationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}

	stats, err := h.appRepo.Stats(r.Context(), userID)
	if err != nil {
		logger.Error("failed to fetch stats", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(w, stats, http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

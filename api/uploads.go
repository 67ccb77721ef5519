package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zmikicdroin/jobtracker/internal/storage"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

type UploadsHandler struct {
	appRepo repository.ApplicationRepo
	files   *storage.Store
}

func NewUploadsHandler(ar repository.ApplicationRepo, files *storage.Store) *UploadsHandler {
	return &UploadsHandler{appRepo: ar, files: files}
}

// Download streams a stored CV. Access is authorized through record
// ownership: the file is served only when the caller owns an application
// whose cv_filename matches.
func (h *UploadsHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	filename := mux.Vars(r)["filename"]

	owns, err := h.appRepo.OwnsCV(r.Context(), userID, filename)
	if err != nil {
		logger.Error("failed to check attachment ownership", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to download file")
		return
	}
	if !owns {
		writeMessage(w, http.StatusNotFound, "File not found or unauthorized")
		return
	}

	path, err := h.files.Path(filename)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "File not found or unauthorized")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

package handler

import (
	"net/http"
)

// maxUploadSize bounds one media upload.
const maxUploadSize = 20 << 20

func (h *Handler) HandleListMedia(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		writeError(w, http.StatusServiceUnavailable, "media library is not configured")
		return
	}
	entries, err := h.library.List(r.Context(), r.PathValue("projectId"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"media": entries})
}

// HandleUploadMedia stores one file from a multipart form under the
// project's media prefix and returns its catalog entry.
func (h *Handler) HandleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		writeError(w, http.StatusServiceUnavailable, "media library is not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	entry, err := h.library.Put(r.Context(), r.PathValue("projectId"), header.Filename, contentType, file, header.Size)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

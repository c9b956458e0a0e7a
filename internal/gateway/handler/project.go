package handler

import (
	"fmt"
	"io"
	"net/http"

	"sajtmaskin/internal/v0"
)

// HandleListProjects lists the workspace projects on the generation
// platform.
func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.platform.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.platform.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.platform.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleDownloadProject streams the newest completed version of the
// project as a zip export.
func (h *Handler) HandleDownloadProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.platform.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	chatID, versionID, ok := v0.ChooseChatAndVersion(p)
	if !ok {
		writeError(w, http.StatusNotFound, "project has no downloadable version")
		return
	}

	body, err := h.platform.DownloadVersionZip(r.Context(), chatID, versionID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.zip"`, v0.Slugify(p.Name)))
	if _, err := io.Copy(w, body); err != nil {
		// Headers are already out; all we can do is stop.
		return
	}
}

// HandleProjectHistory lists the locally persisted generation records for
// one project, newest first.
func (h *Handler) HandleProjectHistory(w http.ResponseWriter, r *http.Request) {
	records := h.store.History(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

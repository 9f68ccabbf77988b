package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/mariposa-trails/trailhead/errors"
	"github.com/mariposa-trails/trailhead/trails"
)

// maxUploadBytes bounds the whole multipart /update request body.
const maxUploadBytes = 50 << 20

// HandleHome is the liveness check
func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Mariposa Trails API is running!")
}

// HandleDebugPath reports where the store lives on disk, for deployment
// troubleshooting.
func (s *Server) HandleDebugPath(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	cwd, _ := os.Getwd()
	_, statErr := os.Stat(s.cfg.Store.Path)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_dir":  cwd,
		"store_path":   s.cfg.Store.Path,
		"data_file":    s.cfg.Store.DataFile,
		"version_file": s.cfg.Store.VersionFile,
		"exists":       statErr == nil,
	})
}

// HandleData returns the full trail dataset
func (s *Server) HandleData(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	dataset, err := s.service.Data(r.Context())
	if err != nil {
		s.logger.Errorw("Failed to read dataset", "error", err)
		writeErrorFrom(w, err)
		return
	}
	if dataset == nil {
		dataset = []trails.Trail{}
	}
	writeJSON(w, http.StatusOK, dataset)
}

// HandleVersion returns the current dataset version counter
func (s *Server) HandleVersion(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	version, err := s.service.Version(r.Context())
	if err != nil {
		s.logger.Errorw("Failed to read version counter", "error", err)
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"version": version})
}

// loginRequest is the POST /login body
type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin exchanges the admin password for a bearer token
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	token, err := s.authSvc.IssueToken(req.Password)
	if err != nil {
		switch {
		case errors.IsInvalidRequestError(err):
			writeError(w, http.StatusBadRequest, "password is required")
		case errors.IsUnauthorizedError(err):
			writeError(w, http.StatusUnauthorized, "invalid password")
		default:
			s.logger.Errorw("Password verification failed", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// updateResponse is the POST /update success body. FailedUploads lists
// attachments that could not be relocated; the merge itself still succeeded.
type updateResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	Version       int                    `json:"version"`
	FailedUploads []trails.UploadFailure `json:"failed_uploads,omitempty"`
}

// HandleUpdate merges an incoming batch of trails into the dataset.
// The body is a multipart form: field "trails" holds the JSON batch, and
// file fields named trail{i}_post{j}_image{k} / trail{i}_post{j}_audio{k}
// carry attachments for post j of trail i, scanned from k=0 until the
// first missing index.
func (s *Server) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return
	}

	raw := r.FormValue("trails")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing trails field")
		return
	}

	incoming, err := trails.DecodeTrails([]byte(raw))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}

	failures := s.attachUploads(r, incoming)

	result, err := s.service.Update(r.Context(), incoming)
	if err != nil {
		s.logger.Errorw("Trail update failed", "error", err, "trails", len(incoming))
		writeErrorFrom(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateResponse{
		Success:       true,
		Message:       "Trails updated successfully",
		Version:       result.Version,
		FailedUploads: failures,
	})
}

// attachUploads relocates uploaded attachment binaries into the store and
// assigns their references to the matching posts. Posts with no uploaded
// files in a slot keep that slot untouched. Failures are collected and
// reported, not fatal.
func (s *Server) attachUploads(r *http.Request, incoming []trails.Trail) []trails.UploadFailure {
	var failures []trails.UploadFailure

	for i := range incoming {
		for j := range incoming[i].Posts {
			post := &incoming[i].Posts[j]

			images, f := s.relocateSlot(r, i, j, "image")
			failures = append(failures, f...)
			if len(images) > 0 {
				post.Images = images
			}

			audio, f := s.relocateSlot(r, i, j, "audio")
			failures = append(failures, f...)
			if len(audio) > 0 {
				post.Audio = audio
			}
		}
	}

	return failures
}

// relocateSlot scans file fields trail{i}_post{j}_{slot}{k} for k = 0, 1, ...
// until the first gap, relocating each upload into the store.
func (s *Server) relocateSlot(r *http.Request, i, j int, slot string) ([]string, []trails.UploadFailure) {
	var refs []string
	var failures []trails.UploadFailure

	for k := 0; ; k++ {
		field := fmt.Sprintf("trail%d_post%d_%s%d", i, j, slot, k)
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			break
		}
		hdr := headers[0]

		content, err := readUpload(hdr)
		if err != nil {
			s.logger.Warnw("Failed to read uploaded file", "field", field, "filename", hdr.Filename, "error", err)
			failures = append(failures, trails.UploadFailure{Field: field, Filename: hdr.Filename, Error: err.Error()})
			continue
		}

		ref, err := s.relocator.Relocate(r.Context(), hdr.Filename, content)
		if err != nil {
			s.logger.Warnw("Failed to relocate attachment", "field", field, "filename", hdr.Filename, "error", err)
			failures = append(failures, trails.UploadFailure{Field: field, Filename: hdr.Filename, Error: err.Error()})
			continue
		}
		refs = append(refs, ref)
	}

	return refs, failures
}

func readUpload(hdr *multipart.FileHeader) ([]byte, error) {
	f, err := hdr.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read uploaded file")
	}
	return content, nil
}

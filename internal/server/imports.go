package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
)

func (s *Server) maxUploadBytes() int64 {
	mb := s.config.Server.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return mb << 20
}

// readUpload returns the multipart field "file" when the request is multipart and the raw body otherwise.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (name string, data []byte, err error) {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(limit); err != nil {
			return "", nil, fmt.Errorf("%w: unreadable multipart body: %v", shared.ErrInvalidInput, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("%w: multipart field \"file\" is required", shared.ErrMissingArgument)
		}
		defer file.Close()
		name = header.Filename
		data, err = io.ReadAll(io.LimitReader(file, limit+1))
		if err != nil {
			return "", nil, fmt.Errorf("%w: failed to read upload: %v", shared.ErrInvalidInput, err)
		}
	} else {
		data, err = io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			return "", nil, fmt.Errorf("%w: failed to read body: %v", shared.ErrInvalidInput, err)
		}
	}

	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty upload", shared.ErrInvalidInput)
	}
	if int64(len(data)) > limit {
		return "", nil, fmt.Errorf("%w: upload exceeds %d bytes", shared.ErrInvalidInput, limit)
	}
	return name, data, nil
}

// importFounders runs a bulk import from an uploaded sheet. Admin only.
//
// Query parameters: dry_run (bool, default false), mode (update|skip, default from config).
// Every run is recorded as a [models.ImportRun]; the run ID is returned in the X-Import-Run header.
func (s *Server) importFounders(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjImports, auth.ActWrite)
	if p == nil {
		return
	}

	dryRun, err := boolParam(r, "dry_run", false)
	if err != nil {
		writeError(w, err)
		return
	}
	modeParam := r.URL.Query().Get("mode")
	if modeParam == "" {
		modeParam = s.config.Import.DedupeMode
	}
	mode, err := tasks.ParseDedupeMode(modeParam)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
		return
	}

	name, data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	run := models.NewImportRun(p.Email, name, dryRun, string(mode))
	if run.Actor == "" {
		run.Actor = p.Subject
	}
	if err := s.dir.ImportRuns.Create(run); err != nil {
		s.logger.Error("failed to record import run", "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("X-Import-Run", run.ID())

	if key, err := s.archive(r.Context(), name, data); err != nil {
		s.logger.Warn("failed to archive upload", "run", run.ID(), "error", err)
	} else {
		run.ArchiveKey = key
	}

	result, err := s.engine.Import(r.Context(), nil, data, tasks.ImportOpts{DryRun: dryRun, Mode: mode})
	if err != nil {
		run.Fail(err)
	} else {
		run.Complete(result)
	}
	if uerr := s.dir.ImportRuns.Update(run); uerr != nil {
		s.logger.Error("failed to update import run", "run", run.ID(), "error", uerr)
	}

	if err != nil {
		if !tasks.IsBatchError(err) {
			s.logger.Error("import failed", "run", run.ID(), "error", err)
		}
		writeError(w, err)
		return
	}

	s.logger.Info("import finished", "run", run.ID(), "actor", run.Actor, "processed", result.Processed,
		"created", result.Created, "updated", result.Updated, "skipped", result.Skipped, "errors", result.Errors)
	writeJSON(w, http.StatusOK, result)
}

// archive keeps a copy of an uploaded sheet when archiving is on. Returns an empty key when it is off.
func (s *Server) archive(ctx context.Context, name string, data []byte) (string, error) {
	if s.blob == nil || !s.config.Import.Archive {
		return "", nil
	}
	info, err := s.blob.Put(ctx, blob.ArchiveKey(name, time.Now()), bytes.NewReader(data), http.DetectContentType(data))
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

func (s *Server) listImports(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjImports, auth.ActRead)
	if p == nil {
		return
	}
	if !s.policy.IsAdmin(p) {
		writeError(w, fmt.Errorf("%w: import history is admin only", shared.ErrForbidden))
		return
	}

	criteria, err := paging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	criteria["status"] = r.URL.Query().Get("status")

	runs, err := s.dir.ImportRuns.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ImportRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, newImportRunResponse(run))
	}
	writeJSON(w, http.StatusOK, out)
}

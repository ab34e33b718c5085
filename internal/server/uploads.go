package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/search"
	"github.com/desertthunder/founders/internal/shared"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type uploadResponse struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// uploadImage stores a profile image and returns its public URL.
// The type is sniffed from content; the client's Content-Type is ignored.
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjUploads, auth.ActWrite) == nil {
		return
	}
	if s.blob == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "uploads are disabled"})
		return
	}

	_, data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		writeError(w, fmt.Errorf("%w: %s is not an image", shared.ErrUnsupportedType, mtype.String()))
		return
	}

	info, err := s.blob.Put(r.Context(), blob.ImageKey(mtype.Extension()), bytes.NewReader(data), mtype.String())
	if err != nil {
		s.logger.Error("failed to store image", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: info.URL, Key: info.Key, Size: info.Size})
}

// search ranks visible founders, startups, skills and hobbies against q.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, fmt.Errorf("%w: q", shared.ErrMissingArgument))
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxLimit {
			writeError(w, fmt.Errorf("%w: limit must be between 1 and %d", shared.ErrInvalidArgument, maxLimit))
			return
		}
		limit = n
	}

	founders, err := s.dir.Founders.List(map[string]any{"visible": true})
	if err != nil {
		writeError(w, err)
		return
	}
	startups, err := s.dir.Startups.List(nil)
	if err != nil {
		writeError(w, err)
		return
	}
	skills, err := s.dir.Skills.List(nil)
	if err != nil {
		writeError(w, err)
		return
	}
	hobbies, err := s.dir.Hobbies.List(nil)
	if err != nil {
		writeError(w, err)
		return
	}

	docs := search.FounderDocuments(founders)
	docs = append(docs, search.StartupDocuments(startups)...)
	docs = append(docs, search.TagDocuments(skills)...)
	docs = append(docs, search.TagDocuments(hobbies)...)

	writeJSON(w, http.StatusOK, search.Find(q, docs, limit))
}

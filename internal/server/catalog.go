package server

import (
	"net/http"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/repositories"
)

func (s *Server) listStartups(w http.ResponseWriter, r *http.Request) {
	criteria, err := paging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	startups, err := s.dir.Startups.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*StartupResponse, 0, len(startups))
	for _, st := range startups {
		out = append(out, newStartupResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStartup(w http.ResponseWriter, r *http.Request) {
	st, err := s.dir.Startups.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStartupResponse(st))
}

func (s *Server) decodeStartup(r *http.Request) (StartupInput, error) {
	var in StartupInput
	if err := decodeJSON(r, &in); err != nil {
		return in, err
	}
	return in, in.Check()
}

func (s *Server) createStartup(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjStartups, auth.ActWrite) == nil {
		return
	}
	in, err := s.decodeStartup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st := models.NewStartup(in.Name, in.Details())
	if err := s.dir.Startups.Create(st); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStartupResponse(st))
}

func (s *Server) updateStartup(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjStartups, auth.ActWrite) == nil {
		return
	}
	st, err := s.dir.Startups.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := s.decodeStartup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st.Name = in.Name
	st.StartupDetails = in.Details()
	if err := s.dir.Startups.Update(st); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStartupResponse(st))
}

func (s *Server) deleteStartup(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjStartups, auth.ActDelete) == nil {
		return
	}
	if err := s.dir.Startups.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Startup deleted successfully"})
}

// tagRoutes binds the skill or hobby handlers to one repository.
type tagRoutes struct {
	path   string
	object string
	repo   *repositories.TagRepository
}

func (s *Server) listTags(t tagRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := paging(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if category := r.URL.Query().Get("category"); category != "" {
			criteria["category"] = category
		}
		tags, err := t.repo.List(criteria)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]TagResponse, 0, len(tags))
		for _, tag := range tags {
			out = append(out, newTagResponse(tag))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) getTag(t tagRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := t.repo.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTagResponse(tag))
	}
}

func (s *Server) createTag(t tagRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.require(w, r, t.object, auth.ActWrite) == nil {
			return
		}
		var in TagInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		tag := models.NewTag("", in.Name, in.Category, in.Description)
		if err := t.repo.Create(tag); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTagResponse(tag))
	}
}

func (s *Server) updateTag(t tagRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.require(w, r, t.object, auth.ActWrite) == nil {
			return
		}
		tag, err := t.repo.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		var in TagInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		tag.Name, tag.Category, tag.Description = in.Name, in.Category, in.Description
		if err := t.repo.Update(tag); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTagResponse(tag))
	}
}

func (s *Server) deleteTag(t tagRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.require(w, r, t.object, auth.ActDelete) == nil {
			return
		}
		if err := t.repo.Delete(r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
	}
}

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

func (s *Server) listHelpRequests(w http.ResponseWriter, r *http.Request) {
	criteria, err := paging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	criteria["founder_id"] = r.URL.Query().Get("founder_id")
	criteria["status"] = r.URL.Query().Get("status")

	reqs, err := s.dir.HelpRequests.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]HelpRequestResponse, 0, len(reqs))
	for _, h := range reqs {
		out = append(out, newHelpRequestResponse(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getHelpRequest(w http.ResponseWriter, r *http.Request) {
	h, err := s.dir.HelpRequests.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newHelpRequestResponse(h))
}

// authorOf loads the founder a help request is filed for and checks that p may act for them.
func (s *Server) authorOf(p *auth.Principal, founderID string) error {
	f, err := s.dir.Founders.Get(founderID)
	if err != nil {
		return referenceError(err, "founder", founderID)
	}
	if !s.canEdit(p, f) {
		return fmt.Errorf("%w: help requests can only be filed for your own profile", shared.ErrForbidden)
	}
	return nil
}

func (s *Server) createHelpRequest(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjHelpRequests, auth.ActWrite)
	if p == nil {
		return
	}
	var in HelpRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.authorOf(p, in.FounderID); err != nil {
		writeError(w, err)
		return
	}

	h := models.NewHelpRequest(in.FounderID, in.Title, in.Description)
	in.Apply(h)
	if err := s.dir.HelpRequests.Create(h); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newHelpRequestResponse(h))
}

func (s *Server) updateHelpRequest(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjHelpRequests, auth.ActWrite)
	if p == nil {
		return
	}
	h, err := s.dir.HelpRequests.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var in HelpRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := s.authorOf(p, h.FounderID); err != nil {
		writeError(w, err)
		return
	}
	if in.FounderID != h.FounderID {
		if err := s.authorOf(p, in.FounderID); err != nil {
			writeError(w, err)
			return
		}
	}

	in.Apply(h)
	if err := s.dir.HelpRequests.Update(h); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newHelpRequestResponse(h))
}

func (s *Server) deleteHelpRequest(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjHelpRequests, auth.ActDelete) == nil {
		return
	}
	if err := s.dir.HelpRequests.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Help request deleted successfully"})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	criteria, err := paging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	upcoming, err := boolParam(r, "upcoming", false)
	if err != nil {
		writeError(w, err)
		return
	}
	if upcoming {
		criteria["after"] = time.Now()
	}

	events, err := s.dir.Events.List(criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.dir.Events.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(e))
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjEvents, auth.ActWrite) == nil {
		return
	}
	var in EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	e := models.NewEvent(in.Title, in.DateTime)
	in.Apply(e)
	if err := s.dir.Events.Create(e); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(e))
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjEvents, auth.ActWrite) == nil {
		return
	}
	e, err := s.dir.Events.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var in EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	in.Apply(e)
	if err := s.dir.Events.Update(e); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(e))
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjEvents, auth.ActDelete) == nil {
		return
	}
	if err := s.dir.Events.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

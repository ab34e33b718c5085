package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/shared"
)

func (s *Server) founderResponse(f *models.Founder) (*FounderResponse, error) {
	resp := &FounderResponse{
		ID: f.ID(), Name: f.Name, Email: f.Email, Bio: f.Bio, Location: f.Location,
		LinkedInURL: f.LinkedInURL, TwitterURL: f.TwitterURL, GitHubURL: f.GitHubURL,
		ProfileImageURL: f.ProfileImageURL, ProfileVisible: f.ProfileVisible, ProfileLinked: f.AuthSubject != "",
		Skills: []TagResponse{}, Hobbies: []TagResponse{},
		CreatedAt: f.CreatedAt(), UpdatedAt: f.UpdatedAt(),
	}

	if f.StartupID != "" {
		startup, err := s.dir.Startups.Get(f.StartupID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if startup != nil {
			resp.Startup = newStartupResponse(startup)
		}
	}
	for _, id := range f.SkillIDs {
		tag, err := s.dir.Skills.Get(id)
		if err != nil {
			return nil, err
		}
		resp.Skills = append(resp.Skills, newTagResponse(tag))
	}
	for _, id := range f.HobbyIDs {
		tag, err := s.dir.Hobbies.Get(id)
		if err != nil {
			return nil, err
		}
		resp.Hobbies = append(resp.Hobbies, newTagResponse(tag))
	}
	return resp, nil
}

// checkReferences rejects unknown startup and tag IDs before they reach a foreign key.
func (s *Server) checkReferences(f *models.Founder) error {
	if f.StartupID != "" {
		if _, err := s.dir.Startups.Get(f.StartupID); err != nil {
			return referenceError(err, "startup", f.StartupID)
		}
	}
	for _, id := range f.SkillIDs {
		if _, err := s.dir.Skills.Get(id); err != nil {
			return referenceError(err, "skill", id)
		}
	}
	for _, id := range f.HobbyIDs {
		if _, err := s.dir.Hobbies.Get(id); err != nil {
			return referenceError(err, "hobby", id)
		}
	}
	return nil
}

func referenceError(err error, entity, id string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: unknown %s %s", shared.ErrInvalidInput, entity, id)
	}
	return err
}

// canSee reports whether p may view f. Hidden profiles are visible to their owner and admins.
func (s *Server) canSee(p *auth.Principal, f *models.Founder) bool {
	return f.ProfileVisible || s.canEdit(p, f)
}

func (s *Server) canEdit(p *auth.Principal, f *models.Founder) bool {
	if p == nil {
		return false
	}
	return s.policy.IsAdmin(p) || f.OwnedBy(p.Email) || (f.AuthSubject != "" && f.AuthSubject == p.Subject)
}

func (s *Server) listFounders(w http.ResponseWriter, r *http.Request) {
	criteria, err := paging(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.policy.IsAdmin(auth.FromContext(r.Context())) {
		criteria["visible"] = true
	}

	founders, err := s.dir.Founders.List(criteria)
	if err != nil {
		s.logger.Error("failed to list founders", "error", err)
		writeError(w, err)
		return
	}

	out := make([]*FounderResponse, 0, len(founders))
	for _, f := range founders {
		resp, err := s.founderResponse(f)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getFounder(w http.ResponseWriter, r *http.Request) {
	f, err := s.dir.Founders.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.canSee(auth.FromContext(r.Context()), f) {
		writeError(w, fmt.Errorf("%w: founder %s", shared.ErrNotFound, f.ID()))
		return
	}

	resp, err := s.founderResponse(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createFounder(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjFounders, auth.ActWrite)
	if p == nil {
		return
	}

	var in FounderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	f := models.NewFounder(in.Name, in.Email, in.LinkedInURL)
	in.Apply(f)
	if f.OwnedBy(p.Email) {
		f.AuthSubject = p.Subject
	}
	if err := s.checkReferences(f); err != nil {
		writeError(w, err)
		return
	}
	if err := s.dir.Founders.Create(f); err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.founderResponse(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) updateFounder(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjFounders, auth.ActWrite)
	if p == nil {
		return
	}

	f, err := s.dir.Founders.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.canEdit(p, f) {
		writeError(w, fmt.Errorf("%w: only the profile owner or an admin may edit it", shared.ErrForbidden))
		return
	}

	var in FounderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.Apply(f)
	if err := s.checkReferences(f); err != nil {
		writeError(w, err)
		return
	}
	if err := s.dir.Founders.Update(f); err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.founderResponse(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteFounder(w http.ResponseWriter, r *http.Request) {
	if s.require(w, r, auth.ObjFounders, auth.ActDelete) == nil {
		return
	}
	if err := s.dir.Founders.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Founder deleted successfully"})
}

// setVisibility hides or shows a profile. Admin only.
func (s *Server) setVisibility(w http.ResponseWriter, r *http.Request) {
	p := s.require(w, r, auth.ObjFounders, auth.ActWrite)
	if p == nil {
		return
	}
	if !s.policy.IsAdmin(p) {
		writeError(w, fmt.Errorf("%w: admin access required", shared.ErrForbidden))
		return
	}

	var in VisibilityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if err := s.dir.Founders.SetVisibility(id, *in.ProfileVisible); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "profile_visible": *in.ProfileVisible})
}

// checkProfile links the caller's identity to the founder with the same email, if there is one.
func (s *Server) checkProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if p == nil {
		writeError(w, fmt.Errorf("%w: bearer token required", shared.ErrNotAuthenticated))
		return
	}

	type result struct {
		HasProfile    bool             `json:"has_profile"`
		ProfileLinked bool             `json:"profile_linked"`
		Founder       *FounderResponse `json:"founder"`
	}

	f, err := s.dir.Founders.GetByAuthSubject(p.Subject)
	if errors.Is(err, shared.ErrNotFound) && p.Email != "" {
		f, err = s.dir.Founders.GetByEmail(p.Email)
		if err == nil && f.AuthSubject == "" {
			if err = s.dir.Founders.LinkAuthSubject(f.ID(), p.Subject); err == nil {
				f.AuthSubject = p.Subject
				s.logger.Info("linked profile", "founder", f.ID(), "subject", p.Subject)
			}
		}
	}
	if errors.Is(err, shared.ErrNotFound) {
		writeJSON(w, http.StatusOK, result{})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.founderResponse(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{HasProfile: true, ProfileLinked: f.AuthSubject == p.Subject, Founder: resp})
}

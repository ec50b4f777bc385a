package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/search"
	"github.com/findmydaycare/daycare-server/internal/shortlist"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidationErrors(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": errs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Address   string `json:"address"`
	Birthday  string `json:"birthday"`
	StartDate string `json:"start_date"`
}

// validate checks the raw request and returns the parsed form alongside any
// problems, all of them at once.
func (req searchRequest) validate() (search.Request, []string) {
	var errs []string
	out := search.Request{Address: strings.TrimSpace(req.Address)}

	if out.Address == "" {
		errs = append(errs, "address is required")
	}

	if strings.TrimSpace(req.Birthday) == "" {
		errs = append(errs, "birthday is required")
	} else if bd, err := time.Parse(dateLayout, req.Birthday); err != nil {
		errs = append(errs, "birthday must be a valid date in YYYY-MM-DD format")
	} else {
		out.Birthday = bd
	}

	if strings.TrimSpace(req.StartDate) != "" {
		if sd, err := time.Parse(dateLayout, req.StartDate); err != nil {
			errs = append(errs, "start_date must be a valid date in YYYY-MM-DD format")
		} else {
			out.StartDate = sd
		}
	}

	if !out.Birthday.IsZero() {
		ref := out.StartDate
		if ref.IsZero() {
			ref = time.Now()
		}
		if out.Birthday.After(ref) {
			errs = append(errs, "birthday must not be in the future")
		}
	}

	return out, errs
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, []string{"request body must be valid JSON"})
		return
	}

	parsed, errs := req.validate()
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := s.search.Search(r.Context(), parsed)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case eris.Is(err, search.ErrAddressNotFound):
		writeError(w, http.StatusNotFound, "address not found, please check the address and try again")
	default:
		zap.L().Error("server: search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search is temporarily unavailable")
	}
}

type shortlistRequest struct {
	Email         string              `json:"email"`
	Daycares      []shortlist.Daycare `json:"daycares"`
	SearchAddress string              `json:"search_address"`
}

func (s *Server) handleShortlistEmail(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	err := s.shortlist.Send(r.Context(), req.Email, req.Daycares, req.SearchAddress)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case eris.Is(err, shortlist.ErrInvalidRecipient):
		writeError(w, http.StatusBadRequest, "a valid email address is required")
	case eris.Is(err, shortlist.ErrEmptyShortlist):
		writeError(w, http.StatusBadRequest, "select at least one daycare to email")
	default:
		zap.L().Error("server: shortlist email failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "email could not be sent, please try again later")
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/NikamRenuka/cabadmin/internal/rates"
)

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	status, detail := s.deps.Rates.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"rates":  s.deps.Rates.Sheet(),
		"status": status,
		"detail": detail,
	})
}

func (s *Server) handleRateValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string  `json:"category"`
		Key      string  `json:"key"`
		Value    float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Rates.SetRate(body.Category, body.Key, body.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeRateStatus(w)
}

func (s *Server) handleRateNested(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string  `json:"category"`
		Key      string  `json:"key"`
		Zone     string  `json:"zone"`
		Value    float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Rates.SetNestedRate(body.Category, body.Key, body.Zone, body.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeRateStatus(w)
}

func (s *Server) handleCustomRouteAdd(w http.ResponseWriter, r *http.Request) {
	route := s.deps.Rates.AddCustomRoute()
	writeJSON(w, http.StatusCreated, route)
}

func (s *Server) handleCustomRouteUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch rates.CustomRoutePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route, err := s.deps.Rates.UpdateCustomRoute(id, patch)
	if err != nil {
		s.writeRateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (s *Server) handleCustomRouteDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Rates.DeleteCustomRoute(id); err != nil {
		s.writeRateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharingRouteAdd(w http.ResponseWriter, r *http.Request) {
	var form rates.SharingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route, err := s.deps.Rates.AddSharingRoute(form)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

func (s *Server) handleSharingRouteDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad index")
		return
	}
	if err := s.deps.Rates.DeleteSharingRoute(index); err != nil {
		s.writeRateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRateStatus(w http.ResponseWriter) {
	status, detail := s.deps.Rates.Status()
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "detail": detail})
}

func (s *Server) writeRateError(w http.ResponseWriter, err error) {
	if errors.Is(err, rates.ErrNoSuchRoute) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

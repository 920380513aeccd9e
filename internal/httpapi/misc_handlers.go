package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/NikamRenuka/cabadmin/internal/upstream"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.deps.Upstream.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.StatusCode > 0 {
			// relay the backend's verdict and message
			writeError(w, ue.StatusCode, ue.Message)
			return
		}
		writeError(w, http.StatusBadGateway, "login backend unreachable")
		return
	}
	token, err := s.deps.Sessions.Create(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session create failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.deps.Notifications.Snapshot(filter),
		"unread":        s.deps.Notifications.UnreadCount(),
	})
}

func (s *Server) handleNotificationCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"unread": s.deps.Notifications.UnreadCount()})
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.deps.Notifications.MarkRead(r.Context(), id); err != nil {
		if upstream.IsTemporary(err) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.deps.Payments.Payments(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, earningsSnapshot)
}

var upgrader = websocket.Upgrader{}

// handleWS subscribes a dashboard session to push updates. The session
// token rides in the query string; the upgrade is refused without one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	if _, ok := s.deps.Sessions.Get(token); !ok {
		writeError(w, http.StatusUnauthorized, "session expired or unknown")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	s.deps.WSReg.Add(newID(), conn)
}

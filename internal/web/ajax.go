package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quicklinks/internal/mutate"
	"quicklinks/internal/perm"
)

// ajaxActions maps the posted action field to a mutation.
var ajaxActions = map[string]string{
	"quicklinks_toggle_pin":       mutate.OpTogglePin,
	"quicklinks_update_status":    mutate.OpUpdateStatus,
	"quicklinks_update_post_type": mutate.OpUpdateType,
}

type ajaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type ajaxMessage struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: data})
}

func writeJSONFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ajaxResponse{Success: false, Data: ajaxMessage{Message: msg}})
}

// handleAjax runs one mutation. The nonce is checked before anything else, and every failure is reported as JSON.
func (s *Server) handleAjax(w http.ResponseWriter, r *http.Request) {
	u, ok := s.viewerForRequest(r)
	if !ok {
		writeJSONFailure(w, http.StatusForbidden, "Not signed in.")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSONFailure(w, http.StatusBadRequest, "Invalid request.")
		return
	}
	action := strings.TrimSpace(r.PostForm.Get("action"))
	op, ok := ajaxActions[action]
	if !ok {
		writeJSONFailure(w, http.StatusBadRequest, "Unknown action.")
		return
	}
	if !verifyActionNonce(s.secret, r.PostForm.Get("nonce"), u.ID, mutate.NonceActions[op], s.now()) {
		writeJSONFailure(w, http.StatusForbidden, "Invalid nonce.")
		return
	}

	id, _ := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("post_id")), 10, 64)
	v := mutate.Viewer{UserID: u.ID, Perm: perm.ForUser(u)}
	m := mutate.Mutator{Items: s.db, Pins: s.builder(r).Pins}
	log := s.log.With("op", op, "user", u.Login, "item", id)

	var data any
	var err error
	switch op {
	case mutate.OpTogglePin:
		var res mutate.PinResult
		if res, err = m.TogglePin(r.Context(), v, id); err == nil {
			data = map[string]string{"state": res.State()}
		}
	case mutate.OpUpdateStatus:
		var res mutate.StatusResult
		if res, err = m.UpdateStatus(r.Context(), v, id, r.PostForm.Get("status")); err == nil {
			data = map[string]any{"status": res.Item.Status, "deleted": res.Deleted, "changed": res.Changed}
		}
	case mutate.OpUpdateType:
		var res mutate.TypeResult
		if res, err = m.UpdateType(r.Context(), v, id, r.PostForm.Get("post_type")); err == nil {
			data = map[string]any{"postType": res.Item.Type, "changed": res.Changed}
		}
	}
	if err != nil {
		var mutErr mutate.MutationError
		if errors.As(err, &mutErr) {
			log.Warn("web: mutation failed", "err", mutErr.Err)
		} else {
			log.Debug("web: mutation rejected", "err", err)
		}
		writeJSONFailure(w, mutate.HTTPStatus(err), err.Error())
		return
	}

	s.hubs.notify(u.ID)
	writeJSONSuccess(w, data)
}

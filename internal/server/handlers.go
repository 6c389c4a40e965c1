package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/model"
	"git.home.luguber.info/inful/taskflow/internal/reduce"
)

type itemsResponse struct {
	Filter string       `json:"filter"`
	Items  []model.Item `json:"items"`
	Total  int          `json:"total"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	snap := s.store.State()

	// No explicit filter on the request: project through the active one.
	f := snap.Filter
	if q := r.URL.Query().Get("filter"); q != "" {
		var err error
		if f, err = model.ParseFilter(q); err != nil {
			writeError(w, http.StatusBadRequest, ferrors.ValidationError(err.Error()).Build())
			return
		}
	}

	writeJSON(w, http.StatusOK, itemsResponse{
		Filter: string(f),
		Items:  model.FilterItems(snap.Items, f),
		Total:  len(snap.Items),
	})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// The id is assigned here so the response can name the created item
	// without guessing which list entry is new.
	id := uuid.NewString()
	if err := s.dispatchSynced(r, reduce.Add{ID: id}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if body.Description != "" {
		if err := s.dispatchSynced(r, reduce.EditDescription{ID: id, Text: body.Description}); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	snap := s.store.State()
	idx := model.IndexByID(snap.Items, id)
	if idx < 0 {
		writeError(w, http.StatusInternalServerError, ferrors.InternalError("created item missing from state").Build())
		return
	}
	writeJSON(w, http.StatusCreated, snap.Items[idx])
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if model.IndexByID(s.store.State().Items, id) < 0 {
		writeError(w, http.StatusNotFound, ferrors.NotFoundError("item not found").Build())
		return
	}

	if err := s.dispatchSynced(r, reduce.EditDescription{ID: id, Text: body.Description}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if model.IndexByID(s.store.State().Items, id) < 0 {
		writeError(w, http.StatusNotFound, ferrors.NotFoundError("item not found").Build())
		return
	}

	if err := s.dispatchSynced(r, reduce.ToggleComplete{ID: id}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// The reducer's delete speaks filtered positions; resolve the id against
	// the current projection.
	snap := s.store.State()
	view := snap.Filtered()
	idx := model.IndexByID(view, id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, ferrors.NotFoundError("item not in current view").Build())
		return
	}

	if err := s.dispatchSynced(r, reduce.Delete{Indices: []int{idx}}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatchSynced(r, reduce.ClearCompleted{}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleMoveItems(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From []int `json:"from"`
		To   int   `json:"to"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.dispatchSynced(r, reduce.Reorder{FromIndices: body.From, ToIndex: body.To}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handlePickFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filter string `json:"filter"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	f, err := model.ParseFilter(body.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, ferrors.ValidationError(err.Error()).Build())
		return
	}

	if err := s.dispatchSynced(r, reduce.PickFilter{Filter: f}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeState(w)
}

// dispatchSynced feeds an action to the store and waits until the loop has
// applied it, so the response reflects the post-action snapshot.
func (s *Server) dispatchSynced(r *http.Request, a reduce.Action) error {
	ctx := r.Context()
	if err := s.store.Dispatch(ctx, a); err != nil {
		return err
	}
	return s.store.Sync(ctx)
}

func (s *Server) writeState(w http.ResponseWriter) {
	snap := s.store.State()
	writeJSON(w, http.StatusOK, itemsResponse{
		Filter: string(snap.Filter),
		Items:  snap.Filtered(),
		Total:  len(snap.Items),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "decode request body").Build()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:    err.Error(),
		Category: string(ferrors.CategoryOf(err)),
	})
}

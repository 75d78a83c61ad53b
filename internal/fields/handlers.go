package fields

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// API provides the REST surface for field definitions, including the
// fields-validate contract consumed by the form editor.
type API struct {
	store *Store
}

// NewAPI creates the fields API over a store.
func NewAPI(store *Store) *API {
	return &API{store: store}
}

// RegisterRoutes mounts the field routes under /lists/{listID}/fields.
func (api *API) RegisterRoutes(r chi.Router) {
	r.Route("/lists/{listID}/fields", func(r chi.Router) {
		r.Get("/", api.HandleListFields)
		r.Post("/", api.HandleCreateField)
		r.Post("/validate", api.HandleValidateKey)
		r.Get("/{fieldID}", api.HandleGetField)
		r.Put("/{fieldID}", api.HandleUpdateField)
		r.Delete("/{fieldID}", api.HandleDeleteField)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// writeSaveError maps store errors to responses. A missing ordering anchor
// gets a structured 409 so the client can prompt a refresh.
func writeSaveError(w http.ResponseWriter, err error) {
	var dep *DependencyNotFoundError
	switch {
	case errors.As(err, &dep):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "dependencyNotFound",
			"column":   dep.OrderColumn,
			"field_id": dep.FieldID,
		})
	case errors.Is(err, ErrKeyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrFieldNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// HandleListFields returns the list's field definitions.
// GET /api/lists/{listID}/fields
func (api *API) HandleListFields(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	defs, err := api.store.ListFields(r.Context(), listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list fields")
		return
	}
	if defs == nil {
		defs = []*FieldDefinition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": defs, "total": len(defs)})
}

// HandleGetField returns one field definition.
// GET /api/lists/{listID}/fields/{fieldID}
func (api *API) HandleGetField(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	fieldID, ok2 := pathID(r, "fieldID")
	if !ok || !ok2 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	f, err := api.store.GetField(r.Context(), listID, fieldID)
	if errors.Is(err, ErrFieldNotFound) {
		writeError(w, http.StatusNotFound, "field not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get field")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleCreateField creates a field definition.
// POST /api/lists/{listID}/fields
func (api *API) HandleCreateField(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var req SaveFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := api.store.CreateField(r.Context(), listID, &req)
	if err != nil {
		writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// HandleUpdateField rewrites a field definition.
// PUT /api/lists/{listID}/fields/{fieldID}
func (api *API) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	fieldID, ok2 := pathID(r, "fieldID")
	if !ok || !ok2 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req SaveFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := api.store.UpdateField(r.Context(), listID, fieldID, &req)
	if err != nil {
		writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleDeleteField removes a field definition and its option children.
// DELETE /api/lists/{listID}/fields/{fieldID}
func (api *API) HandleDeleteField(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	fieldID, ok2 := pathID(r, "fieldID")
	if !ok || !ok2 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	err := api.store.DeleteField(r.Context(), listID, fieldID)
	if errors.Is(err, ErrFieldNotFound) {
		writeError(w, http.StatusNotFound, "field not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete field")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidateKey implements the merge-tag collision check used for
// client-side error display while a field is edited.
// POST /api/lists/{listID}/fields/validate {"key": "...", "id": <optional>}
func (api *API) HandleValidateKey(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var req struct {
		Key string `json:"key"`
		ID  int64  `json:"id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exists, err := api.store.KeyExists(r.Context(), listID, req.Key, req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate merge tag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

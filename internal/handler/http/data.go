// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
	"github.com/noa10/mataresit-app-sub003/models"
)

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	collection, ok := collectionFromURL(w, r)
	if !ok {
		return
	}

	var record models.RemoteEntity
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Msg("bad upsert body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if record.ID != chi.URLParam(r, "id") {
		http.Error(w, "body id does not match url id", http.StatusBadRequest)
		return
	}

	h.store.upsert(principalFromContext(r.Context()), collection, record)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromURL(w, r)
	if !ok {
		return
	}

	if !h.store.delete(principalFromContext(r.Context()), collection, chi.URLParam(r, "id")) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSince(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	collection, ok := collectionFromURL(w, r)
	if !ok {
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			log.Err(err).Str("since", raw).Msg("bad since parameter")
			http.Error(w, "bad `since` parameter", http.StatusBadRequest)
			return
		}
		since = parsed
	}
	limit, offset := pageParams(r)

	records := h.store.listSince(principalFromContext(r.Context()), collection, since, limit, offset)
	if records == nil {
		records = []models.RemoteEntity{}
	}
	writeJSON(w, records)
}

func (h *Handler) listIDs(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromURL(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)

	page := h.store.listIDs(principalFromContext(r.Context()), collection, limit, offset)
	if page.IDs == nil {
		page.IDs = []string{}
	}
	writeJSON(w, page)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	collection, ok := collectionFromURL(w, r)
	if !ok {
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Msg("bad fetch body")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records := h.store.fetch(principalFromContext(r.Context()), collection, body.IDs)
	writeJSON(w, records)
}

// collectionFromURL validates the {collection} URL segment. On failure it
// writes a 404 and returns ok=false.
func collectionFromURL(w http.ResponseWriter, r *http.Request) (models.EntityType, bool) {
	collection := models.EntityType(chi.URLParam(r, "collection"))
	if !collection.Valid() {
		http.Error(w, ErrUnknownCollection.Error(), http.StatusNotFound)
		return "", false
	}
	return collection, true
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type collectionHandler struct {
	server *Server
	spec   CollectionSpec
	col    *Collection
}

// query filters and sorts the collection according to the request's options.
func (h *collectionHandler) query(w http.ResponseWriter, r *http.Request, extra map[string]any) ([]Record, listQuery, bool) {
	lq, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, lq, false
	}
	filter := make(map[string]any, len(lq.filter)+len(extra))
	for k, v := range lq.filter {
		filter[k] = v
	}
	for k, v := range extra {
		filter[k] = v
	}
	recs, err := filterRecords(h.col.All(), filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, lq, false
	}
	sortRecords(recs, lq.sort)
	if lq.populate != nil {
		recs = h.server.populate(h.spec, recs, lq.populate.Path, lq.populate.Select)
	}
	return recs, lq, true
}

func (h *collectionHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, _, ok := h.query(w, r, nil)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, recs, "ok")
}

func (h *collectionHandler) many(w http.ResponseWriter, r *http.Request) {
	h.paged(w, r, nil)
}

func (h *collectionHandler) paged(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	recs, lq, ok := h.query(w, r, extra)
	if !ok {
		return
	}
	page, info := paginate(recs, lq.page, lq.limit)
	if h.spec.LegacyMany {
		writeEnvelope(w, http.StatusOK, page, "ok")
		return
	}
	writePage(w, page, info)
}

func (h *collectionHandler) active(w http.ResponseWriter, r *http.Request) {
	recs, _, ok := h.query(w, r, map[string]any{h.spec.ToggleField: true})
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, recs, "ok")
}

func (h *collectionHandler) lookup(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.paged(w, r, map[string]any{field: chi.URLParam(r, "ref")})
	}
}

func (h *collectionHandler) findOne(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := filterRecords(h.col.All(), map[string]any{field: chi.URLParam(r, "ref")})
		if err != nil || len(recs) == 0 {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeEnvelope(w, http.StatusOK, recs[0], "ok")
	}
}

func (h *collectionHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.col.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, rec, "ok")
}

func (h *collectionHandler) details(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.col.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	rec = h.server.expand(h.spec, rec, h.server.refFields(h.spec), "")
	writeEnvelope(w, http.StatusOK, rec, "ok")
}

func (h *collectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var rec Record
	if err := decodeBody(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeEnvelope(w, http.StatusCreated, h.col.Insert(rec), "created")
}

func (h *collectionHandler) createMany(w http.ResponseWriter, r *http.Request) {
	var recs []Record
	if err := decodeBody(r, &recs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created := make([]Record, 0, len(recs))
	for _, rec := range recs {
		created = append(created, h.col.Insert(rec))
	}
	writeEnvelope(w, http.StatusCreated, created, "created")
}

func (h *collectionHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch Record
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, ok := h.col.Update(chi.URLParam(r, "id"), patch)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, rec, "updated")
}

func (h *collectionHandler) updateMany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs  []string `json:"ids"`
		Data Record   `json:"data"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated := make([]Record, 0, len(req.IDs))
	for _, id := range req.IDs {
		if rec, ok := h.col.Update(id, req.Data); ok {
			updated = append(updated, rec)
		}
	}
	writeEnvelope(w, http.StatusOK, updated, "updated")
}

func (h *collectionHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.col.Delete(id) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, Record{"_id": id}, "deleted")
}

func (h *collectionHandler) deleteBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deleted := 0
	for _, id := range req.IDs {
		if h.col.Delete(id) {
			deleted++
		}
	}
	writeEnvelope(w, http.StatusOK, map[string]int{"deletedCount": deleted}, "deleted")
}

func (h *collectionHandler) toggle(w http.ResponseWriter, r *http.Request) {
	state, ok := h.col.Toggle(chi.URLParam(r, "id"), h.spec.ToggleField)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, state, "toggled")
}

func (h *collectionHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	rec, ok := h.col.Update(chi.URLParam(r, "id"), Record{"status": req.Status})
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, rec, "updated")
}

func (h *collectionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	patch := Record{"status": "cancelled"}
	if req.Reason != "" {
		patch["cancelReason"] = req.Reason
	}
	rec, ok := h.col.Update(chi.URLParam(r, "id"), patch)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeEnvelope(w, http.StatusOK, rec, "cancelled")
}

package server

import (
	"bytes"
	"encoding/json"
	"iter"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// edgeRequest is the body of POST /edges.
type edgeRequest struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Weight *record.Edge `json:"weight"`
}

// edgeView is an edge together with its endpoints. Outer and Direction are
// only set when the edge was reached from a node.
type edgeView struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Target    string      `json:"target"`
	Outer     string      `json:"outer,omitempty"`
	Direction string      `json:"direction,omitempty"`
	Weight    record.Edge `json:"weight"`
}

func viewOf(r record.Ref, traversed bool) edgeView {
	v := edgeView{ID: r.ID, Source: r.Source, Target: r.Target, Weight: r.Weight}
	if traversed {
		v.Outer = r.Outer()
		v.Direction = r.Direction.String()
	}
	return v
}

type idResponse struct {
	ID string `json:"id"`
}

type snapshotRequest struct {
	Key string `json:"key"`
}

type snapshotResponse struct {
	Key   string `json:"key"`
	Hash  string `json:"hash,omitempty"`
	Bytes int    `json:"bytes,omitempty"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

type errorResponse struct {
	Code  errs.Code `json:"code"`
	Error string    `json:"error"`
}

// =============================================================================
// Graph
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	nodes, edges := s.graph.NodeCount(), s.graph.EdgeCount()
	s.mu.RUnlock()
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"nodes":  nodes,
		"edges":  edges,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.RLock()
	err := record.WriteJSON(s.graph, &buf)
	s.mu.RUnlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	nodes := make([]record.Node, 0, s.graph.NodeCount())
	for n := range s.graph.Nodes() {
		nodes = append(nodes, n)
	}
	s.mu.RUnlock()
	respondJSON(w, http.StatusOK, nodes)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	var n record.Node
	if err := decodeBody(r, &n); err != nil {
		s.respondError(w, err)
		return
	}
	var id string
	err := s.mutate(r.Context(), observability.OpAddNode, n.ID, func(g *record.Graph) error {
		var err error
		id, err = g.AddNode(n)
		return err
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	n, err := s.graph.Node(chi.URLParam(r, "id"))
	s.mu.RUnlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var removed record.Node
	err := s.mutate(r.Context(), observability.OpRemoveNode, id, func(g *record.Graph) error {
		var err error
		removed, err = g.RemoveNode(id)
		return err
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}

func (s *Server) handleNodeEdges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	edgeType := r.URL.Query().Get("type")
	keep := func(e record.Edge) bool { return edgeType == "" || e.Type == edgeType }

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		refs iter.Seq[record.Ref]
		err  error
	)
	switch dir := r.URL.Query().Get("direction"); dir {
	case "", "both":
		refs, err = s.graph.AdjacentFunc(id, keep)
	case "out":
		refs, err = s.graph.OutgoingFunc(id, keep)
	case "in":
		refs, err = s.graph.IncomingFunc(id, keep)
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "direction must be out, in or both, got %q", dir)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	views := []edgeView{}
	for ref := range refs {
		views = append(views, viewOf(ref, true))
	}
	respondJSON(w, http.StatusOK, views)
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) handlePostEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	switch {
	case req.Weight == nil:
		s.respondError(w, errs.New(errs.ErrCodeMissingField, "edge request has no weight"))
		return
	case req.Source == "", req.Target == "":
		s.respondError(w, errs.New(errs.ErrCodeMissingField, "edge request needs source and target"))
		return
	}

	var id string
	err := s.mutate(r.Context(), observability.OpAddEdge, req.Weight.ID, func(g *record.Graph) error {
		var err error
		id, err = g.AddEdge(req.Source, req.Target, *req.Weight)
		return err
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ref, err := s.graph.Ref(chi.URLParam(r, "id"))
	s.mu.RUnlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(ref, false))
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var removed record.Edge
	err := s.mutate(r.Context(), observability.OpRemoveEdge, id, func(g *record.Graph) error {
		var err error
		removed, err = g.RemoveEdge(id)
		return err
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, removed)
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	keys, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	respondJSON(w, http.StatusOK, keys)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req snapshotRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			s.respondError(w, err)
			return
		}
	}
	if req.Key == "" {
		req.Key = snapshot.NewKey()
	}

	s.mu.RLock()
	data, err := record.Marshal(s.graph)
	nodes, edges := s.graph.NodeCount(), s.graph.EdgeCount()
	s.mu.RUnlock()
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), req.Key, data); err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snapshotResponse{
		Key:   req.Key,
		Hash:  snapshot.Hash(data),
		Bytes: len(data),
		Nodes: nodes,
		Edges: edges,
	})
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	key := chi.URLParam(r, "key")
	g, err := s.restore(r.Context(), key)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshotResponse{
		Key:   key,
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
	})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.respondError(w, errs.New(errs.ErrCodeUnsupported, "no snapshot store configured"))
		return false
	}
	return true
}

// =============================================================================
// Encoding
// =============================================================================

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	respondJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeMissingNodeID, errs.ErrCodeMissingEdgeID, errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidNodeType, errs.ErrCodeInvalidEdgeType, errs.ErrCodeInvalidSchema,
		errs.ErrCodeMissingIdentity, errs.ErrCodeMissingType, errs.ErrCodeMissingField:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidKey:
		return http.StatusBadRequest
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

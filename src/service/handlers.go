package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mosaicnetworks/waybill/src/aggregate"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/version"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

// multipart overhead allowed on top of the upload limit
const formOverhead = 1 << 20

// GetHealth ...
func (s *Service) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   version.Version,
		"nodes":     s.registry.Len(),
		"timestamp": s.now().UTC(),
	})
}

// GetNodes ...
func (s *Service) GetNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.registry.Nodes()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"nodes":   nodes,
		"count":   len(nodes),
		"factions": map[registry.Faction][]*registry.Node{
			registry.Origin: s.registry.ByFaction(registry.Origin),
			registry.Dest:   s.registry.ByFaction(registry.Dest),
		},
	})
}

// SendDocument reads a multipart form with a "file" part and an optional
// "allowedViewers" JSON array, and submits the document.
func (s *Service) SendDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.engine.MaxUploadSize()+formOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, "No file uploaded", &workflow.ValidationError{Field: "file", Err: err})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "Cannot read file", &workflow.ValidationError{Field: "file", Err: err})
		return
	}

	viewers := []string{}
	if raw := strings.TrimSpace(r.FormValue("allowedViewers")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &viewers); err != nil {
			s.writeError(w, "Invalid allowedViewers", &workflow.ValidationError{Field: "allowedViewers", Err: err})
			return
		}
	}

	res, err := s.engine.Submit(r.Context(), workflow.SubmitRequest{
		Sender:    vars["sender"],
		Recipient: vars["recipient"],
		FileName:  header.Filename,
		Content:   data,
		Viewers:   viewers,
	})
	if err != nil {
		s.writeError(w, "Failed to send document", err)
		return
	}

	resp := map[string]interface{}{
		"success":            true,
		"message":            "Document sent successfully",
		"document":           res.Document,
		"contentUnavailable": res.ContentUnavailable(),
	}
	if res.ContentErr != nil {
		resp["contentError"] = res.ContentErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDocuments ...
func (s *Service) GetDocuments(w http.ResponseWriter, r *http.Request) {
	node := mux.Vars(r)["node"]

	list, err := s.engine.ListFor(r.Context(), node)
	if err != nil {
		s.writeError(w, "Failed to retrieve documents", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"nodeId":      node,
		"nodeName":    s.nodeName(node),
		"documents":   list.Documents,
		"count":       len(list.Documents),
		"placeholder": list.Placeholder,
	})
}

// GetDocument ...
func (s *Service) GetDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.engine.View(r.Context(), vars["docID"], vars["node"])
	if err != nil {
		s.writeError(w, "Failed to retrieve document", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"document":   res.Document,
		"fullAccess": res.FullAccess,
	})
}

// GetDocumentContent streams the payload of a document to a node with full
// access to it.
func (s *Service) GetDocumentContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	res, err := s.engine.Content(r.Context(), vars["docID"], vars["node"])
	if err != nil {
		s.writeError(w, "Failed to retrieve document content", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": res.Document.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

type resolveRequest struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// ApproveDocument accepts an optional JSON body {"message": "..."}.
func (s *Service) ApproveDocument(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, workflow.Approved)
}

// RejectDocument expects a JSON body {"reason": "..."}.
func (s *Service) RejectDocument(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, workflow.Rejected)
}

func (s *Service) resolve(w http.ResponseWriter, r *http.Request, decision workflow.Status) {
	vars := mux.Vars(r)

	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, "Invalid request body", &workflow.ValidationError{Field: "body", Err: err})
		return
	}

	message := body.Message
	if decision == workflow.Rejected && body.Reason != "" {
		message = body.Reason
	}

	res, err := s.engine.Resolve(r.Context(), workflow.ResolveRequest{
		DocID:    vars["docID"],
		Actor:    vars["node"],
		Decision: decision,
		Message:  message,
	})
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to resolve document as %s", decision), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Document %s successfully!", decision),
		"document": res.Document,
		"recorded": res.Recorded,
		"verified": res.Verified,
	})
}

// GetMessages ...
func (s *Service) GetMessages(w http.ResponseWriter, r *http.Request) {
	node := mux.Vars(r)["node"]

	res, err := s.feed.For(r.Context(), node)
	if err != nil {
		s.writeError(w, "Failed to retrieve messages", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"nodeId":      node,
		"nodeName":    s.nodeName(node),
		"messages":    res.Messages,
		"count":       len(res.Messages),
		"summary":     res.Summary,
		"derived":     res.Derived,
		"placeholder": res.Placeholder,
	})
}

// GetAllDocuments ...
func (s *Service) GetAllDocuments(w http.ResponseWriter, r *http.Request) {
	res := s.collector.Collect(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"documents":    res.Documents,
		"totalCount":   len(res.Documents),
		"nodesCovered": s.registry.Len() - len(res.Skipped),
		"skipped":      res.Skipped,
		"summary":      aggregate.Summarize(res.Plain()),
	})
}

// GetStatistics ...
func (s *Service) GetStatistics(w http.ResponseWriter, r *http.Request) {
	views := s.collector.Views(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"statistics": aggregate.ComputeStatistics(s.registry, views, s.now().UTC()),
	})
}

func (s *Service) nodeName(id string) string {
	if n, ok := s.registry.Get(id); ok {
		return n.Name()
	}
	return id
}

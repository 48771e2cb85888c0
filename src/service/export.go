package service

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mosaicnetworks/waybill/src/aggregate"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

var csvHeader = []string{
	"Document ID",
	"File Name",
	"Sender Node",
	"Recipient Node",
	"Status",
	"Timestamp",
	"Content Hash",
}

type exportData struct {
	ExportTimestamp time.Time            `json:"exportTimestamp"`
	ExportedBy      string               `json:"exportedBy"`
	TotalDocuments  int                  `json:"totalDocuments"`
	Summary         aggregate.Summary    `json:"summary"`
	Skipped         []string             `json:"skipped"`
	Documents       []*workflow.Document `json:"documents"`
}

// ExportDocuments exports the documents of ?nodeId, or of the whole network
// when nodeId is absent or unknown, as CSV or JSON.
func (s *Service) ExportDocuments(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	node := r.URL.Query().Get("nodeId")

	data := exportData{
		ExportTimestamp: s.now().UTC(),
		ExportedBy:      "all-nodes",
		Skipped:         []string{},
	}

	if s.registry.Has(node) {
		list, err := s.engine.ListFor(r.Context(), node)
		if err != nil {
			s.writeError(w, "Failed to export documents", err)
			return
		}
		data.ExportedBy = node
		data.Documents = list.Documents
	} else {
		res := s.collector.Collect(r.Context())
		data.Documents = res.Plain()
		data.Skipped = res.Skipped
	}

	data.TotalDocuments = len(data.Documents)
	data.Summary = aggregate.Summarize(data.Documents)

	filename := fmt.Sprintf("documents_export_%s.%s", data.ExportTimestamp.Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "json" {
		writeJSON(w, http.StatusOK, data)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, d := range data.Documents {
		cw.Write([]string{
			d.DocID,
			d.FileName,
			d.SenderNode,
			d.RecipientNode,
			string(d.Status),
			d.CreatedAt.Format(time.RFC3339Nano),
			d.ContentHash,
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		s.logger.WithError(err).Error("Writing CSV export")
	}
}

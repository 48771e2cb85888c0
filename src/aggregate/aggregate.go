// Package aggregate merges the per-node document lists into a network-wide
// view.
package aggregate

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

// Annotated is a document together with the node whose list it was taken
// from.
type Annotated struct {
	*workflow.Document
	ViewingFrom        string           `json:"viewingFromNode"`
	ViewingFromName    string           `json:"viewingFromNodeName,omitempty"`
	ViewingFromFaction registry.Faction `json:"viewingFromFaction,omitempty"`
}

// NodeView is the document list of one node, or the error that prevented
// fetching it.
type NodeView struct {
	Node      *registry.Node
	Documents []*workflow.Document
	Err       error
}

// Result is the merged view. Skipped lists the nodes whose list was
// unavailable, in input order; Err accumulates their errors.
type Result struct {
	Documents []Annotated
	Skipped   []string
	Err       *multierror.Error
}

// Aggregate concatenates the views in the given order, keeps the first
// occurrence of every docID and sorts the result by creation time, most
// recent first. Failed views are skipped.
func Aggregate(views []NodeView) *Result {
	res := &Result{Documents: []Annotated{}, Skipped: []string{}}

	seen := make(map[string]struct{})

	for _, v := range views {
		if v.Err != nil {
			res.Skipped = append(res.Skipped, v.Node.ID)
			res.Err = multierror.Append(res.Err, v.Err)
			continue
		}

		for _, d := range v.Documents {
			if _, ok := seen[d.DocID]; ok {
				continue
			}
			seen[d.DocID] = struct{}{}

			res.Documents = append(res.Documents, Annotated{
				Document:           d,
				ViewingFrom:        v.Node.ID,
				ViewingFromName:    v.Node.Name(),
				ViewingFromFaction: v.Node.Faction,
			})
		}
	}

	sort.SliceStable(res.Documents, func(i, j int) bool {
		return res.Documents[i].CreatedAt.After(res.Documents[j].CreatedAt)
	})

	return res
}

// Summary counts documents per status.
type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Summarize counts documents per status.
func Summarize(docs []*workflow.Document) Summary {
	s := Summary{Total: len(docs)}
	for _, d := range docs {
		switch d.Status {
		case workflow.Pending:
			s.Pending++
		case workflow.Approved:
			s.Approved++
		case workflow.Rejected:
			s.Rejected++
		}
	}
	return s
}

// Plain returns the merged documents without their annotation.
func (r *Result) Plain() []*workflow.Document {
	docs := make([]*workflow.Document, len(r.Documents))
	for i, a := range r.Documents {
		docs[i] = a.Document
	}
	return docs
}

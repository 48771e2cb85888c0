package aggregate

import (
	"errors"
	"time"

	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

// ErrPlaceholder marks a node whose ledger could only return sample data.
var ErrPlaceholder = errors.New("listing is placeholder data")

// RecentActivitySize is the number of documents in Statistics.RecentActivity.
const RecentActivitySize = 10

// NodeStatistics are the counters of one node. Error is set, and the counters
// left at zero, when the node's list was unavailable.
type NodeStatistics struct {
	Name              string           `json:"name"`
	Faction           registry.Faction `json:"faction"`
	DocumentsSent     int              `json:"documentsSent"`
	DocumentsReceived int              `json:"documentsReceived"`
	PendingApprovals  int              `json:"pendingApprovals"`
	Error             string           `json:"error,omitempty"`
}

// NetworkStatistics counts the nodes of the registry.
type NetworkStatistics struct {
	TotalNodes  int `json:"totalNodes"`
	OriginNodes int `json:"originNodes"`
	DestNodes   int `json:"destNodes"`
}

// Statistics summarizes the network.
type Statistics struct {
	Timestamp      time.Time                  `json:"timestamp"`
	Network        NetworkStatistics          `json:"network"`
	Documents      Summary                    `json:"documents"`
	Nodes          map[string]*NodeStatistics `json:"nodeStatistics"`
	RecentActivity []Annotated                `json:"recentActivity"`
	Skipped        []string                   `json:"skipped"`
}

// ComputeStatistics derives network statistics from per-node views.
func ComputeStatistics(reg *registry.Registry, views []NodeView, now time.Time) *Statistics {
	stats := &Statistics{
		Timestamp: now,
		Network: NetworkStatistics{
			TotalNodes:  reg.Len(),
			OriginNodes: len(reg.ByFaction(registry.Origin)),
			DestNodes:   len(reg.ByFaction(registry.Dest)),
		},
		Nodes: make(map[string]*NodeStatistics, len(views)),
	}

	for _, v := range views {
		ns := &NodeStatistics{
			Name:    v.Node.Name(),
			Faction: v.Node.Faction,
		}
		stats.Nodes[v.Node.ID] = ns

		if v.Err != nil {
			ns.Error = "Could not fetch data"
			continue
		}

		for _, d := range v.Documents {
			if d.SenderNode == v.Node.ID {
				ns.DocumentsSent++
			}
			if d.RecipientNode == v.Node.ID {
				ns.DocumentsReceived++
				if d.Status == workflow.Pending {
					ns.PendingApprovals++
				}
			}
		}
	}

	merged := Aggregate(views)

	stats.Documents = Summarize(merged.Plain())
	stats.Skipped = merged.Skipped

	recent := merged.Documents
	if len(recent) > RecentActivitySize {
		recent = recent[:RecentActivitySize]
	}
	stats.RecentActivity = recent

	return stats
}

// Package messages builds the notification feed of a node. When the ledger
// keeps no message log, messages are derived from the documents the node
// sent or received; derived messages are a display aid, not history.
package messages

import (
	"fmt"
	"sort"
	"time"

	"github.com/mosaicnetworks/waybill/src/workflow"
)

// Category is the kind of a Message.
type Category string

const (
	DocumentReceived  Category = "document-received"
	DocumentSent      Category = "document-sent"
	ApprovalReceived  Category = "approval-received"
	RejectionReceived Category = "rejection-received"
)

// Priority of a Message.
type Priority string

const (
	Normal Priority = "normal"
	High   Priority = "high"
)

// Message is a notification addressed to a node.
type Message struct {
	ID           string    `json:"id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Body         string    `json:"message"`
	Category     Category  `json:"type"`
	RelatedDocID string    `json:"docId"`
	Timestamp    time.Time `json:"timestamp"`
	Priority     Priority  `json:"priority"`
}

// Derive synthesizes the messages of node from documents:
//
//   - a document node received from another node gives document-received;
//   - a document node sent to another node gives document-sent while pending,
//     approval-received or rejection-received once resolved.
//
// The result is sorted by timestamp, most recent first, keeping input order
// on ties.
func Derive(node string, docs []*workflow.Document) []Message {
	msgs := []Message{}

	for _, d := range docs {
		if d.RecipientNode == node && d.SenderNode != node {
			msgs = append(msgs, Message{
				ID:           fmt.Sprintf("doc-%s-received", d.DocID),
				From:         d.SenderNode,
				To:           node,
				Body:         fmt.Sprintf("New document received: %s", d.FileName),
				Category:     DocumentReceived,
				RelatedDocID: d.DocID,
				Timestamp:    d.CreatedAt,
				Priority:     Normal,
			})
		}

		if d.SenderNode == node && d.RecipientNode != node {
			m := Message{
				ID:           fmt.Sprintf("doc-%s-status", d.DocID),
				From:         d.RecipientNode,
				To:           node,
				Body:         "Document sent and pending approval",
				Category:     DocumentSent,
				RelatedDocID: d.DocID,
				Timestamp:    d.CreatedAt,
				Priority:     Normal,
			}

			switch d.Status {
			case workflow.Approved:
				m.Body = fmt.Sprintf("Document approved: %s", d.FileName)
				m.Category = ApprovalReceived
				m.Priority = High
			case workflow.Rejected:
				m.Body = fmt.Sprintf("Document rejected: %s", d.FileName)
				m.Category = RejectionReceived
				m.Priority = High
			}

			msgs = append(msgs, m)
		}
	}

	Sort(msgs)

	return msgs
}

// Sort orders messages by timestamp descending. The sort is stable.
func Sort(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.After(msgs[j].Timestamp)
	})
}

// Summary counts messages per group.
type Summary struct {
	Total      int `json:"total"`
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
	General    int `json:"general"`
}

// Summarize groups messages into approvals, rejections and everything else.
func Summarize(msgs []Message) Summary {
	s := Summary{Total: len(msgs)}
	for _, m := range msgs {
		switch m.Category {
		case ApprovalReceived:
			s.Approvals++
		case RejectionReceived:
			s.Rejections++
		default:
			s.General++
		}
	}
	return s
}

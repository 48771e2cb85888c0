package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/workflow"
	"github.com/sirupsen/logrus"
)

// FeedResult is the message feed of a node. Derived is set when the messages
// were synthesized from documents because the ledger keeps no message log;
// Placeholder when those documents were themselves sample data.
type FeedResult struct {
	Node        string
	Messages    []Message
	Summary     Summary
	Derived     bool
	Placeholder bool
}

// Feed reads message feeds from the ledger, falling back to Derive.
type Feed struct {
	engine *workflow.Engine
	ledger ledger.Port
	logger *logrus.Entry
}

// NewFeed creates a Feed reading native messages from port.
func NewFeed(engine *workflow.Engine, port ledger.Port, logger *logrus.Entry) *Feed {
	return &Feed{
		engine: engine,
		ledger: port,
		logger: logger,
	}
}

// For returns the messages addressed to node, most recent first.
func (f *Feed) For(ctx context.Context, node string) (*FeedResult, error) {
	if !f.engine.Registry().Has(node) {
		return nil, &workflow.ValidationError{
			Field: "node",
			Err:   fmt.Errorf("%w: %q", workflow.ErrUnknownNode, node),
		}
	}

	res := &FeedResult{Node: node}

	r := ledger.Evaluate(ctx, f.ledger, ledger.GetMessagesForNode, node)
	switch r.Outcome {
	case ledger.Supported:
		msgs, err := fromLedger(r.Payload)
		if err != nil {
			return nil, &workflow.LedgerError{
				Op:          "messages",
				Transaction: ledger.GetMessagesForNode,
				Node:        node,
				Err:         err,
			}
		}
		res.Messages = msgs
	case ledger.Unsupported:
		f.logger.WithFields(logrus.Fields{
			"tx":   ledger.GetMessagesForNode,
			"node": node,
		}).Debug("Ledger keeps no messages, deriving from documents")

		list, err := f.engine.ListFor(ctx, node)
		if err != nil {
			return nil, err
		}

		res.Messages = Derive(node, list.Documents)
		res.Derived = true
		res.Placeholder = list.Placeholder
	default:
		return nil, &workflow.LedgerError{
			Op:          "messages",
			Transaction: ledger.GetMessagesForNode,
			Node:        node,
			Err:         r.Err,
		}
	}

	res.Summary = Summarize(res.Messages)

	return res, nil
}

func fromLedger(payload []byte) ([]Message, error) {
	var raw []ledger.NodeMessage
	if err := ledger.Decode(payload, &raw); err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(raw))
	for i, m := range raw {
		ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("message %d: timestamp: %v", i, err)
		}

		msg := Message{
			ID:           fmt.Sprintf("msg-%s-%d", m.DocID, i),
			From:         m.From,
			To:           m.To,
			Body:         m.Message,
			Category:     Category(m.Type),
			RelatedDocID: m.DocID,
			Timestamp:    ts,
			Priority:     Normal,
		}

		switch m.Type {
		case ledger.MessageApproval:
			msg.Category = ApprovalReceived
			msg.Priority = High
		case ledger.MessageRejection:
			msg.Category = RejectionReceived
			msg.Priority = High
		}

		msgs = append(msgs, msg)
	}

	Sort(msgs)

	return msgs, nil
}

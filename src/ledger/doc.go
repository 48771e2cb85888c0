// Package ledger defines the port through which waybill reaches the
// append-only ledger, and implements the adapters used to run it.
//
// The core never talks to a ledger directly. It submits and evaluates named
// transactions through a Port:
//
//	SubmitDocument, ApproveDocument, RejectDocument   (submit)
//	GetDocumentById, GetDocumentsForNode, GetMessagesForNode   (evaluate)
//
// Deployed contracts are versioned and any of these names may be missing from
// a given deployment. Callers do not catch errors to detect this; they go
// through Submit and Evaluate, which classify every call into a Result whose
// Outcome is one of Supported, Unsupported, Rejected or TransientFailure, and
// branch on it.
//
// Three Port implementations are provided:
//
// - LocalLedger: an in-process ledger that runs the document Contract against
// a Store (InmemStore, or BadgerStore for persistence). It is the development
// and test ledger; it does not implement consensus.
//
// - SocketClient: reaches a ledger gateway over JSON-RPC.
//
// - SocketServer: exposes any Port over JSON-RPC, so that a LocalLedger can be
// shared by several waybill processes.
package ledger

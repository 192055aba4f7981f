package com

import (
	"log"
	"time"
)

// IOleMessageFilter return values.
const (
	serverCallIsHandled      = 0 // SERVERCALL_ISHANDLED
	serverCallRetryLater     = 2 // SERVERCALL_RETRYLATER
	pendingMsgWaitDefProcess = 2 // PENDINGMSG_WAITDEFPROCESS
	cancelCall               = -1
)

// FilterPolicy decides what happens to calls the IDE rejects while busy.
type FilterPolicy struct {
	// RetryDelay is how long COM waits before retrying a call rejected with
	// SERVERCALL_RETRYLATER.
	RetryDelay time.Duration
	// RetryBudget cancels a busy call once it has been retried for this
	// long. Zero retries until the IDE accepts.
	RetryBudget time.Duration
}

// retryRejectedCall implements IOleMessageFilter::RetryRejectedCall. elapsed
// is the time since the original call was made. The result is the retry
// delay in milliseconds, or -1 to cancel the call.
func (p FilterPolicy) retryRejectedCall(rejectType uint32, elapsed time.Duration) int32 {
	if rejectType != serverCallRetryLater {
		return cancelCall
	}
	if p.RetryBudget > 0 && elapsed >= p.RetryBudget {
		return cancelCall
	}
	ms := p.RetryDelay.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	// COM retries at once for values below 100 and waits otherwise.
	if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	return int32(ms)
}

// handleInComingCall implements IOleMessageFilter::HandleInComingCall.
// The bridge never serves calls, so every incoming call is accepted.
func (FilterPolicy) handleInComingCall() uint32 {
	return serverCallIsHandled
}

// messagePending implements IOleMessageFilter::MessagePending. Messages
// keep flowing through default processing while a call is blocked.
func (FilterPolicy) messagePending() uint32 {
	return pendingMsgWaitDefProcess
}

// revokeFilter runs revoke and logs a failure. A filter that stays
// registered keeps answering for an apartment that is going away.
func revokeFilter(revoke func() error) {
	if err := revoke(); err != nil {
		log.Printf("revoking message filter: %v", err)
	}
}

package documents

// transitions is the forward edge set of the lifecycle state machine.
// cancelled and expired are reachable from any non-terminal state and are
// handled by CanTransition directly.
var transitions = map[DocumentStatus]DocumentStatus{
	StatusDraft:            StatusPendingReview,
	StatusPendingReview:    StatusPendingSignature,
	StatusPendingSignature: StatusSigned,
	StatusSigned:           StatusCompleted,
}

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s DocumentStatus) bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusPendingSignature,
		StatusSigned, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func IsTerminal(s DocumentStatus) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to DocumentStatus) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled || to == StatusExpired {
		return true
	}
	return transitions[from] == to
}

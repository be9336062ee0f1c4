package entities

// JoinStatus is the outcome of joining one target
type JoinStatus string

const (
	JoinJoined        JoinStatus = "joined"
	JoinAlreadyMember JoinStatus = "already_member"
	JoinPending       JoinStatus = "pending" // the admins must approve the request
	JoinFailed        JoinStatus = "failed"
)

// JoinResult describes one target of a join batch
type JoinResult struct {
	Target    string // the token as pasted
	Title     string
	DisplayID string
	Status    JoinStatus
	Reason    string // set when Status is JoinFailed
}

// JoinReport is the outcome of a join batch, one result per target in input order
type JoinReport struct {
	Results []JoinResult
	// Aborted is set when the batch stopped early, the remaining targets
	// are reported as failed
	Aborted bool
}

// Count returns how many results have status
func (r JoinReport) Count(status JoinStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

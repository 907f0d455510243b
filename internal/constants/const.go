package constants

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRated      = "rated"
)

const (
	SquadMaxMembers   = 6
	SquadMinForOrder  = 3
	PoolMinApplicants = 2
	PoolMaxApplicants = 4
	MinRating         = 1
	MaxRating         = 5
)

// PayoutRate is the fraction of the order amount split across the assigned
// workers; the remainder stays with the platform.
const PayoutRate = "0.95"

const DefaultTokenSecret = "supersecretkey"

package domain

// A participant's committed pairing of one destination and one vehicle class
// within a session. Claims are only ever created as part of a full-batch
// commit, never updated, and deleted in bulk when their session resolves.
type Claim struct {
	ClaimID       int64
	SessionID     string
	Participant   string
	DestinationID string
	VehicleID     string
}

// One proposed entry in an allocation batch, before commit.
type ClaimRequest struct {
	Participant   string
	DestinationID string
	VehicleID     string
}

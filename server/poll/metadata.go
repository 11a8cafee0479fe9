package poll

// Metadata stores personalized metadata of a poll.
type Metadata struct {
	PollID   int64  `json:"poll_id"`
	UserID   string `json:"user_id"`
	HasVoted bool   `json:"has_voted"`
	IsOwner  bool   `json:"is_owner"` // IsOwner will be true if the user with "UserID" may start and end the poll.
	State    State  `json:"state"`
}

// NewMetadata returns the metadata of a poll for the given user.
func (p *Poll) NewMetadata(userID string, isOwner bool) *Metadata {
	return &Metadata{
		PollID:   p.ID,
		UserID:   userID,
		HasVoted: p.HasVoted(userID),
		IsOwner:  isOwner,
		State:    p.State,
	}
}

// ToMap returns a Metadata as a map
func (m *Metadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"poll_id":   m.PollID,
		"user_id":   m.UserID,
		"has_voted": m.HasVoted,
		"is_owner":  m.IsOwner,
		"state":     string(m.State),
	}
}

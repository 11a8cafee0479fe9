package poll

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matterpoll/movievote/server/utils"
)

// State is the lifecycle state of a poll. States only move forward.
type State string

const (
	StateCreated State = "created"
	StateOngoing State = "ongoing"
	StateEnded   State = "ended"
)

// Poll stores all needed information for a poll
type Poll struct {
	ID         int64
	CreatedAt  int64
	Creator    string
	ChannelID  string `json:"channel_id,omitempty"`
	PostID     string `json:"post_id,omitempty"`
	Candidates []*Candidate
	Voters     map[string]bool
	State      State
	Deadline   int64 `json:"deadline,omitempty"`
	EndedAt    int64 `json:"ended_at,omitempty"`
}

// Candidate is a movie of a poll and the number of votes it received
type Candidate struct {
	Name  string
	Votes int
}

// NewPoll creates a new poll with the given parameter. Candidate names are trimmed and
// must be non-empty and unique within the poll.
func NewPoll(id int64, createdAt int64, creator string, candidates []string) (*Poll, *utils.ErrorMessage) {
	if creator == "" {
		return nil, InvalidInput("missing creator")
	}
	if len(candidates) == 0 {
		return nil, InvalidInput("a poll needs at least one movie")
	}

	p := Poll{
		ID:        id,
		CreatedAt: createdAt,
		Creator:   creator,
		Voters:    map[string]bool{},
		State:     StateCreated,
	}
	for _, c := range candidates {
		if errMsg := p.addCandidate(c); errMsg != nil {
			return nil, errMsg
		}
	}

	return &p, nil
}

func (p *Poll) addCandidate(name string) *utils.ErrorMessage {
	name = strings.TrimSpace(name)
	if name == "" {
		return InvalidInput("empty movie names are not allowed")
	}
	if p.candidate(name) != nil {
		return InvalidInput("duplicate movie: " + name)
	}
	p.Candidates = append(p.Candidates, &Candidate{Name: name})
	return nil
}

func (p *Poll) candidate(name string) *Candidate {
	for _, c := range p.Candidates {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MaxDurationMinutes is the longest a poll can be open for voting, one year.
const MaxDurationMinutes = 365 * 24 * 60

// Start opens the poll for voting until now plus durationMinutes.
// A zero duration makes the poll immediately endable.
func (p *Poll) Start(durationMinutes int, now int64) *utils.ErrorMessage {
	if durationMinutes < 0 {
		return InvalidInput("duration must not be negative")
	}
	if durationMinutes > MaxDurationMinutes {
		return InvalidInput(fmt.Sprintf("duration must not exceed %d minutes", MaxDurationMinutes))
	}
	switch p.State {
	case StateOngoing:
		return p.errorFor(ErrPollIsOngoing)
	case StateEnded:
		return p.errorFor(ErrPollAlreadyEnded)
	}

	p.State = StateOngoing
	p.Deadline = now + (time.Duration(durationMinutes) * time.Minute).Milliseconds()
	return nil
}

// Vote counts a vote of userID for the given candidate.
func (p *Poll) Vote(userID, candidate string) *utils.ErrorMessage {
	if userID == "" {
		return InvalidInput("missing voter")
	}
	if p.State != StateOngoing {
		return p.errorFor(ErrPollNotOngoing)
	}
	c := p.candidate(candidate)
	if c == nil {
		return ErrCandidateNotFound.WithData(map[string]interface{}{
			"PollID":    p.ID,
			"Candidate": candidate,
		})
	}
	if p.HasVoted(userID) {
		return p.errorFor(ErrAlreadyVoted)
	}

	c.Votes++
	if p.Voters == nil {
		p.Voters = map[string]bool{}
	}
	p.Voters[userID] = true
	return nil
}

// End closes the poll. Only polls whose deadline has passed can be ended.
func (p *Poll) End(now int64) *utils.ErrorMessage {
	switch p.State {
	case StateEnded:
		return p.errorFor(ErrPollAlreadyEnded)
	case StateCreated:
		return p.errorFor(ErrPollNotOngoing)
	}
	if now < p.Deadline {
		remaining := time.Duration(p.Deadline-now) * time.Millisecond
		return ErrVotingNotEnded.WithData(map[string]interface{}{
			"PollID":    p.ID,
			"Remaining": remaining.Round(time.Second).String(),
		})
	}

	p.State = StateEnded
	p.EndedAt = now
	return nil
}

// Winner returns the name of the candidate with the most votes.
// On a tie the candidate added first wins.
func (p *Poll) Winner() string {
	var winner *Candidate
	for _, c := range p.Candidates {
		if winner == nil || c.Votes > winner.Votes {
			winner = c
		}
	}
	if winner == nil {
		return ""
	}
	return winner.Name
}

// VotesFor returns the number of votes the given candidate received.
func (p *Poll) VotesFor(candidate string) (int, *utils.ErrorMessage) {
	c := p.candidate(candidate)
	if c == nil {
		return 0, ErrCandidateNotFound.WithData(map[string]interface{}{
			"PollID":    p.ID,
			"Candidate": candidate,
		})
	}
	return c.Votes, nil
}

// CandidateNames returns the candidate names in insertion order.
func (p *Poll) CandidateNames() []string {
	names := make([]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		names = append(names, c.Name)
	}
	return names
}

// TotalVotes returns the number of votes cast in this poll
func (p *Poll) TotalVotes() int {
	total := 0
	for _, c := range p.Candidates {
		total += c.Votes
	}
	return total
}

// HasVoted return true if a given user has voted in this poll
func (p *Poll) HasVoted(userID string) bool {
	return p.Voters[userID]
}

// IsDeadlineReached returns true if an ongoing poll can be ended at the given time.
func (p *Poll) IsDeadlineReached(now int64) bool {
	return p.State == StateOngoing && now >= p.Deadline
}

// EncodeToByte returns a poll as a byte array
func (p *Poll) EncodeToByte() []byte {
	b, _ := json.Marshal(p)
	return b
}

// DecodePollFromByte tries to create a poll from a byte array
func DecodePollFromByte(b []byte) *Poll {
	p := Poll{}
	err := json.Unmarshal(b, &p)
	if err != nil {
		return nil
	}
	return &p
}

// Copy deep copies a poll
func (p *Poll) Copy() *Poll {
	p2 := new(Poll)
	*p2 = *p
	if p.Candidates != nil {
		p2.Candidates = make([]*Candidate, len(p.Candidates))
		for i, c := range p.Candidates {
			p2.Candidates[i] = &Candidate{Name: c.Name, Votes: c.Votes}
		}
	}
	// Polls fetched from the store might have a nil Voters map, keep it that way for an exact copy.
	if p.Voters != nil {
		p2.Voters = make(map[string]bool, len(p.Voters))
		for k, v := range p.Voters {
			p2.Voters[k] = v
		}
	}
	return p2
}

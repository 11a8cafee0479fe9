package poll

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/utils"
)

// Rejections returned by poll and registry operations. Compare with errors.Is, the
// returned values may carry additional template data.
var (
	ErrInvalidInput = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.invalidInput",
			Other: "Invalid input: {{.Reason}}",
		},
	}
	ErrUnauthorized = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.unauthorized",
			Other: "Only the poll owner is allowed to do this.",
		},
	}
	ErrPollNotFound = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.pollNotFound",
			Other: "Poll #{{.PollID}} does not exist.",
		},
	}
	ErrPollIsOngoing = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.pollIsOngoing",
			Other: "Poll #{{.PollID}} is already running.",
		},
	}
	ErrPollAlreadyEnded = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.pollAlreadyEnded",
			Other: "Poll #{{.PollID}} has already ended.",
		},
	}
	ErrPollNotOngoing = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.pollNotOngoing",
			Other: "Poll #{{.PollID}} is not open for voting.",
		},
	}
	ErrPollNotEnded = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.pollNotEnded",
			Other: "Results of poll #{{.PollID}} are available once it has ended.",
		},
	}
	ErrVotingNotEnded = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.votingNotEnded",
			Other: "Voting for poll #{{.PollID}} is still open for {{.Remaining}}.",
		},
	}
	ErrCandidateNotFound = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.candidateNotFound",
			Other: "Poll #{{.PollID}} has no movie called \"{{.Candidate}}\".",
		},
	}
	ErrAlreadyVoted = &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.error.alreadyVoted",
			Other: "You've already voted in poll #{{.PollID}}.",
		},
	}
)

// InvalidInput returns ErrInvalidInput with the given reason.
func InvalidInput(reason string) *utils.ErrorMessage {
	return ErrInvalidInput.WithData(map[string]interface{}{
		"Reason": reason,
	})
}

func (p *Poll) errorFor(e *utils.ErrorMessage) *utils.ErrorMessage {
	return e.WithData(map[string]interface{}{
		"PollID": p.ID,
	})
}

// NotFound returns ErrPollNotFound for the given poll ID.
func NotFound(pollID int64) *utils.ErrorMessage {
	return ErrPollNotFound.WithData(map[string]interface{}{
		"PollID": pollID,
	})
}

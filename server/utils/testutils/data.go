package testutils

import (
	"github.com/mattermost/mattermost-server/v6/model"

	"github.com/matterpoll/movievote/server/poll"
)

// GetPollID returns a static Poll ID.
func GetPollID() int64 {
	return 1
}

// GetOwnerID returns a static user ID of the poll owner.
func GetOwnerID() string {
	return "xohquae1eiPh7ahSaizeeb4ohz"
}

// GetSiteURL returns a static Site URL.
func GetSiteURL() string {
	return "https://example.org"
}

// GetBotUserID returns a static bot user ID.
func GetBotUserID() string {
	return "aegooso5na9desa0QuieV1ohfa"
}

// GetChannelID returns a static channel ID.
func GetChannelID() string {
	return "aefiu9Oonoo3eiz7Aeveedai6o"
}

// GetPostID returns a static post ID.
func GetPostID() string {
	return "oquai7Iethah4eeNgoo1Ishiej"
}

// GetCreatedAt returns the static creation time of all fixture polls.
func GetCreatedAt() int64 {
	return 1234567890
}

// GetDeadline returns the deadline of ongoing fixture polls, ten minutes after creation.
func GetDeadline() int64 {
	return GetCreatedAt() + 10*60*1000
}

// GetServerConfig return a static server config.
func GetServerConfig() *model.Config {
	siteURL := GetSiteURL()
	defaultClientLocale := "en"
	return &model.Config{
		ServiceSettings: model.ServiceSettings{
			SiteURL: &siteURL,
		},
		LocalizationSettings: model.LocalizationSettings{
			DefaultClientLocale: &defaultClientLocale,
		},
	}
}

// GetPoll returns a Poll with three movies that has not been started yet.
func GetPoll() *poll.Poll {
	return &poll.Poll{
		ID:        GetPollID(),
		CreatedAt: GetCreatedAt(),
		Creator:   "userID1",
		ChannelID: GetChannelID(),
		Candidates: []*poll.Candidate{
			{Name: "Alien"},
			{Name: "Heat"},
			{Name: "Up"},
		},
		Voters: map[string]bool{},
		State:  poll.StateCreated,
	}
}

// GetOngoingPoll returns a Poll with three movies, no votes and a deadline ten minutes after creation.
func GetOngoingPoll() *poll.Poll {
	p := GetPoll()
	p.State = poll.StateOngoing
	p.Deadline = GetDeadline()
	return p
}

// GetPollWithVotes returns an ongoing Poll with three movies and some votes.
func GetPollWithVotes() *poll.Poll {
	p := GetOngoingPoll()
	p.Candidates[0].Votes = 2
	p.Candidates[1].Votes = 1
	p.Voters = map[string]bool{
		"userID1": true,
		"userID2": true,
		"userID3": true,
	}
	return p
}

// GetEndedPoll returns GetPollWithVotes after it was ended at the deadline.
func GetEndedPoll() *poll.Poll {
	p := GetPollWithVotes()
	p.State = poll.StateEnded
	p.EndedAt = GetDeadline()
	return p
}

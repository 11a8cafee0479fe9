package plugin

import (
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/utils"
)

var announcementWinner = &i18n.Message{
	ID:    "announcement.winner",
	Other: "Poll #{{.PollID}} has ended. Tonight's movie is **{{.Winner}}**!",
}

// createPoll creates a poll and, if channelID is set, posts it there with one vote button per movie.
func (p *MovievotePlugin) createPoll(userID, channelID string, candidates []string) (int64, *utils.ErrorMessage, error) {
	id, errMsg, err := p.registry.CreatePoll(userID, channelID, candidates)
	if errMsg != nil || err != nil {
		return 0, errMsg, err
	}
	if channelID == "" {
		return id, nil, nil
	}

	poll, errMsg, err := p.registry.Get(id)
	if errMsg != nil || err != nil {
		return id, errMsg, err
	}
	post, appErr := p.pollPost(poll)
	if appErr != nil {
		p.API.LogWarn("Failed to render poll post", "pollID", id, "error", appErr.Error())
		return id, nil, nil
	}
	created, appErr := p.API.CreatePost(post)
	if appErr != nil {
		p.API.LogWarn("Failed to post poll", "pollID", id, "error", appErr.Error())
		return id, nil, nil
	}

	if errMsg, err = p.registry.AttachPost(userID, id, created.Id); errMsg != nil || err != nil {
		return id, errMsg, err
	}
	p.API.LogDebug("Created a new poll", "pollID", id, "postID", created.Id)
	return id, nil, nil
}

// startPoll opens a poll and arms the deadline notification.
func (p *MovievotePlugin) startPoll(userID string, pollID int64, durationMinutes int) (*poll.Poll, *utils.ErrorMessage, error) {
	errMsg, err := p.registry.StartPoll(userID, pollID, durationMinutes)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	poll, errMsg, err := p.registry.Get(pollID)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}

	p.scheduleDeadline(poll)
	p.updatePollPost(poll)
	return poll, nil, nil
}

// vote records a vote and refreshes the poll post.
func (p *MovievotePlugin) vote(userID string, pollID int64, candidate string) (*utils.ErrorMessage, error) {
	errMsg, err := p.registry.Vote(userID, pollID, candidate)
	if errMsg != nil || err != nil {
		return errMsg, err
	}
	poll, errMsg, err := p.registry.Get(pollID)
	if errMsg != nil || err != nil {
		return errMsg, err
	}

	p.updatePollPost(poll)
	p.publishPollMetadata(poll, userID)
	return nil, nil
}

// endPoll ends a poll, replaces the poll post with the results and announces the winner.
func (p *MovievotePlugin) endPoll(userID string, pollID int64) (*poll.Poll, *utils.ErrorMessage, error) {
	errMsg, err := p.registry.EndPoll(userID, pollID)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	poll, errMsg, err := p.registry.Get(pollID)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}

	p.cancelDeadline(pollID)
	p.updatePollPost(poll)
	p.postWinnerAnnouncement(poll)
	return poll, nil, nil
}

// pollPost renders a poll as bot post. Ended polls show the results, all others vote buttons.
func (p *MovievotePlugin) pollPost(pl *poll.Poll) (*model.Post, *model.AppError) {
	displayName, appErr := p.ConvertCreatorIDToDisplayName(pl.Creator)
	if appErr != nil {
		return nil, appErr
	}

	post := &model.Post{}
	if pl.State == poll.StateEnded {
		post = pl.ToEndPollPost(p.bundle, displayName)
	} else {
		showTallies := !p.registry.Options().SealTallies
		model.ParseSlackAttachment(post, pl.ToPostActions(p.bundle, manifest.Id, displayName, showTallies))
	}
	post.UserId = p.botUserID
	post.ChannelId = pl.ChannelID
	post.Type = model.PostTypeDefault
	post.AddProp("poll_id", pl.ID)
	return post, nil
}

// updatePollPost refreshes the post a poll is rendered in. Failures are only logged,
// the poll itself has already been saved.
func (p *MovievotePlugin) updatePollPost(poll *poll.Poll) {
	if poll.PostID == "" {
		return
	}

	post, appErr := p.pollPost(poll)
	if appErr != nil {
		p.API.LogWarn("Failed to render poll post", "pollID", poll.ID, "error", appErr.Error())
		return
	}
	post.Id = poll.PostID
	if _, appErr = p.API.UpdatePost(post); appErr != nil {
		p.API.LogWarn("Failed to update poll post", "pollID", poll.ID, "error", appErr.Error())
	}
}

func (p *MovievotePlugin) postWinnerAnnouncement(poll *poll.Poll) {
	if poll.ChannelID == "" {
		return
	}

	post := &model.Post{
		UserId:    p.botUserID,
		ChannelId: poll.ChannelID,
		RootId:    poll.PostID,
		Type:      model.PostTypeDefault,
		Message: p.localizeServer(announcementWinner, map[string]interface{}{
			"PollID": poll.ID,
			"Winner": poll.Winner(),
		}),
	}
	if _, appErr := p.API.CreatePost(post); appErr != nil {
		p.API.LogWarn("Failed to post winner announcement", "pollID", poll.ID, "error", appErr.Error())
	}
}

func (p *MovievotePlugin) publishPollMetadata(poll *poll.Poll, userID string) {
	metadata := poll.NewMetadata(userID, p.registry.IsOwner(userID))
	p.API.PublishWebSocketEvent("has_voted", metadata.ToMap(), &model.WebsocketBroadcast{UserId: userID})
}

package plugin

import (
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/poll"
)

var announcementDeadlineReached = &i18n.Message{
	ID:    "announcement.deadlineReached",
	Other: "Voting time for poll #{{.PollID}} is over. The poll owner can now end it with `/{{.Trigger}} end {{.PollID}}`.",
}

// rearmDeadlines schedules deadline notifications for all ongoing polls.
func (p *MovievotePlugin) rearmDeadlines() {
	polls, err := p.registry.Ongoing()
	if err != nil {
		p.API.LogWarn("Failed to fetch ongoing polls", "error", err.Error())
		return
	}

	for _, poll := range polls {
		p.scheduleDeadline(poll)
	}
}

// scheduleDeadline arms a timer that notifies the poll thread once the deadline has passed.
// The poll is not ended automatically.
func (p *MovievotePlugin) scheduleDeadline(poll *poll.Poll) {
	duration := time.Until(time.UnixMilli(poll.Deadline))
	if duration < 0 {
		duration = 0
	}
	pollID := poll.ID

	p.timersLock.Lock()
	defer p.timersLock.Unlock()

	if p.deadlineTimers == nil {
		p.deadlineTimers = map[int64]*time.Timer{}
	}
	if t, ok := p.deadlineTimers[pollID]; ok {
		t.Stop()
	}
	p.deadlineTimers[pollID] = time.AfterFunc(duration, func() {
		p.onDeadline(pollID)
	})
}

func (p *MovievotePlugin) cancelDeadline(pollID int64) {
	p.timersLock.Lock()
	defer p.timersLock.Unlock()

	if t, ok := p.deadlineTimers[pollID]; ok {
		t.Stop()
		delete(p.deadlineTimers, pollID)
	}
}

func (p *MovievotePlugin) stopDeadlines() {
	p.timersLock.Lock()
	defer p.timersLock.Unlock()

	for id, t := range p.deadlineTimers {
		t.Stop()
		delete(p.deadlineTimers, id)
	}
}

// onDeadline tells the poll thread that the owner may end the poll now.
func (p *MovievotePlugin) onDeadline(pollID int64) {
	p.timersLock.Lock()
	delete(p.deadlineTimers, pollID)
	p.timersLock.Unlock()

	poll, errMsg, err := p.registry.Get(pollID)
	if err != nil {
		p.API.LogWarn("Failed to get poll after deadline", "pollID", pollID, "error", err.Error())
		return
	}
	if errMsg != nil || !poll.IsDeadlineReached(model.GetMillis()) {
		return
	}
	if poll.ChannelID == "" {
		return
	}

	post := &model.Post{
		UserId:    p.botUserID,
		ChannelId: poll.ChannelID,
		RootId:    poll.PostID,
		Type:      model.PostTypeDefault,
		Message: p.localizeServer(announcementDeadlineReached, map[string]interface{}{
			"PollID":  poll.ID,
			"Trigger": p.getConfiguration().Trigger,
		}),
	}
	if _, appErr := p.API.CreatePost(post); appErr != nil {
		p.API.LogWarn("Failed to post deadline notification", "pollID", pollID, "error", appErr.Error())
	}
}

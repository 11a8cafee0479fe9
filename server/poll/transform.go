package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/utils"
)

var (
	postTitle = &i18n.Message{
		ID:    "poll.post.title",
		Other: "Movie poll #{{.PollID}}",
	}
	postStatus = &i18n.Message{
		ID:    "poll.post.status",
		Other: "**Status**: {{.State}}",
	}
	postTotalVotes = &i18n.Message{
		ID:    "poll.post.totalVotes",
		Other: "**Total votes**: {{.TotalVotes}}",
	}
	postDeadline = &i18n.Message{
		ID:    "poll.post.deadline",
		Other: "**Voting closes**: {{.Deadline}}",
	}
	postEnded = &i18n.Message{
		ID:    "poll.post.ended",
		Other: "This poll has ended. The winner is **{{.Winner}}**.",
	}
	postCandidateVotes = &i18n.Message{
		ID:    "poll.post.candidateVotes",
		One:   "{{.Name}} ({{.Votes}} vote)",
		Other: "{{.Name}} ({{.Votes}} votes)",
	}
	stateNames = map[State]*i18n.Message{
		StateCreated: {ID: "poll.state.created", Other: "waiting to be started"},
		StateOngoing: {ID: "poll.state.ongoing", Other: "open for voting"},
		StateEnded:   {ID: "poll.state.ended", Other: "ended"},
	}
)

// ToPostActions returns the attachment of a poll post with one vote button per movie.
// If showTallies is true, the current number of votes is shown on each button.
func (p *Poll) ToPostActions(bundle *utils.Bundle, pluginID, authorName string, showTallies bool) []*model.SlackAttachment {
	l := bundle.GetServerLocalizer()
	actions := []*model.PostAction{}

	for i, c := range p.Candidates {
		name := c.Name
		if showTallies {
			name = fmt.Sprintf("%s (%d)", name, c.Votes)
		}
		actions = append(actions, &model.PostAction{
			Id:   fmt.Sprintf("vote%d", i),
			Name: name,
			Type: model.PostActionTypeButton,
			Integration: &model.PostActionIntegration{
				URL: fmt.Sprintf("/plugins/%s/api/v1/polls/%d/actions/vote/%d", pluginID, p.ID, i),
			},
		})
	}

	return []*model.SlackAttachment{{
		AuthorName: authorName,
		Title:      p.title(bundle, l),
		Text:       p.makeAdditionalText(bundle, l, showTallies),
		Actions:    actions,
	}}
}

func (p *Poll) title(bundle *utils.Bundle, l *i18n.Localizer) string {
	return bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
		DefaultMessage: postTitle,
		TemplateData:   map[string]interface{}{"PollID": p.ID},
	})
}

// makeAdditionalText make descriptions about poll
// This method returns markdown text, because it is used for SlackAttachment.Text field.
func (p *Poll) makeAdditionalText(bundle *utils.Bundle, l *i18n.Localizer, showTallies bool) string {
	lines := []string{"---"}
	lines = append(lines, bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
		DefaultMessage: postStatus,
		TemplateData: map[string]interface{}{
			"State": bundle.LocalizeDefaultMessage(l, stateNames[p.State]),
		},
	}))
	if p.State == StateOngoing {
		lines = append(lines, bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
			DefaultMessage: postDeadline,
			TemplateData:   map[string]interface{}{"Deadline": time.UnixMilli(p.Deadline).UTC().Format(time.RFC1123)},
		}))
	}
	if showTallies {
		lines = append(lines, bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
			DefaultMessage: postTotalVotes,
			TemplateData:   map[string]interface{}{"TotalVotes": p.TotalVotes()},
		}))
	}
	return strings.Join(lines, "\n")
}

// ToEndPollPost returns a post showing the final tallies and the winner of an ended poll.
func (p *Poll) ToEndPollPost(bundle *utils.Bundle, authorName string) *model.Post {
	l := bundle.GetServerLocalizer()
	post := &model.Post{}
	fields := []*model.SlackAttachmentField{}

	for _, c := range p.Candidates {
		fields = append(fields, &model.SlackAttachmentField{
			Short: true,
			Title: bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
				DefaultMessage: postCandidateVotes,
				TemplateData: map[string]interface{}{
					"Name":  c.Name,
					"Votes": c.Votes,
				},
				PluralCount: c.Votes,
			}),
		})
	}

	attachments := []*model.SlackAttachment{{
		AuthorName: authorName,
		Title:      p.title(bundle, l),
		Text: bundle.LocalizeWithConfig(l, &i18n.LocalizeConfig{
			DefaultMessage: postEnded,
			TemplateData:   map[string]interface{}{"Winner": p.Winner()},
		}),
		Fields: fields,
	}}
	model.ParseSlackAttachment(post, attachments)

	return post
}

package plugin

import (
	"strconv"
	"strings"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/utils"
)

var (
	commandHelpText = &i18n.Message{
		ID: "command.help.text",
		Other: "- `/{{.Trigger}} create \"Movie 1\" \"Movie 2\"`: Create a poll\n" +
			"- `/{{.Trigger}} start <poll id> <minutes>`: Open a poll for voting (poll owner only)\n" +
			"- `/{{.Trigger}} vote <poll id> \"Movie\"`: Vote for a movie, once per poll\n" +
			"- `/{{.Trigger}} end <poll id>`: End a poll after its voting time is over (poll owner only)\n" +
			"- `/{{.Trigger}} winner <poll id>`: Show the winning movie\n" +
			"- `/{{.Trigger}} votes <poll id> \"Movie\"`: Show how many votes a movie got\n" +
			"- `/{{.Trigger}} list [@user]`: List the polls a user created\n" +
			"- `/{{.Trigger}} show <poll id>`: Show a poll",
	}
	commandUnknownAction = &i18n.Message{
		ID:    "command.error.unknownAction",
		Other: "Unknown command `{{.Action}}`. Type `/{{.Trigger}} help` to see what you can do.",
	}
	commandUsage = &i18n.Message{
		ID:    "command.error.usage",
		Other: "Invalid input. Try `/{{.Trigger}} {{.Usage}}`.",
	}
	commandUserNotFound = &i18n.Message{
		ID:    "command.error.userNotFound",
		Other: "There is no user called {{.Username}}.",
	}

	responsePollCreated = &i18n.Message{
		ID:    "response.create.success",
		Other: "Created poll #{{.PollID}}.",
	}
	responsePollStarted = &i18n.Message{
		ID:    "response.start.success",
		One:   "Poll #{{.PollID}} is open for voting for {{.Duration}} minute.",
		Other: "Poll #{{.PollID}} is open for voting for {{.Duration}} minutes.",
	}
	responseVoteCounted = &i18n.Message{
		ID:    "response.vote.counted",
		Other: "Your vote has been counted.",
	}
	responsePollEnded = &i18n.Message{
		ID:    "response.end.success",
		Other: "Poll #{{.PollID}} has ended.",
	}
	responseWinner = &i18n.Message{
		ID:    "response.winner",
		Other: "The winner of poll #{{.PollID}} is **{{.Winner}}**.",
	}
	responseVotes = &i18n.Message{
		ID:    "response.votes",
		One:   "**{{.Candidate}}** has {{.Votes}} vote in poll #{{.PollID}}.",
		Other: "**{{.Candidate}}** has {{.Votes}} votes in poll #{{.PollID}}.",
	}
	responseListEmpty = &i18n.Message{
		ID:    "response.list.empty",
		Other: "{{.User}} hasn't created any polls yet.",
	}
	responseList = &i18n.Message{
		ID:    "response.list",
		Other: "Polls created by {{.User}}: {{.PollIDs}}",
	}
)

const (
	usageStart = "start <poll id> <minutes>"
	usageVote  = "vote <poll id> \"Movie\""
	usageEnd   = "end <poll id>"
	usageWin   = "winner <poll id>"
	usageVotes = "votes <poll id> \"Movie\""
	usageShow  = "show <poll id>"
	usageList  = "list [@user]"
)

type commandHandler func(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error)

// ExecuteCommand parses a given input and runs the matching poll operation
func (p *MovievotePlugin) ExecuteCommand(_ *plugin.Context, args *model.CommandArgs) (*model.CommandResponse, *model.AppError) {
	trigger := p.getConfiguration().Trigger
	action, params := utils.ParseInput(args.Command, trigger)

	handlers := map[string]commandHandler{
		"create": p.executeCreate,
		"start":  p.executeStart,
		"vote":   p.executeVote,
		"end":    p.executeEnd,
		"winner": p.executeWinner,
		"votes":  p.executeVotes,
		"list":   p.executeList,
		"show":   p.executeShow,
	}

	if action == "" || action == "help" {
		return p.ephemeral(p.localize(args.UserId, commandHelpText, map[string]interface{}{"Trigger": trigger})), nil
	}
	handler, ok := handlers[action]
	if !ok {
		return p.ephemeral(p.localize(args.UserId, commandUnknownAction, map[string]interface{}{
			"Action":  action,
			"Trigger": trigger,
		})), nil
	}

	response, errMsg, err := handler(args, params)
	if err != nil {
		p.API.LogWarn("Failed to execute command", "action", action, "userID", args.UserId, "error", err.Error())
		return p.ephemeral(p.localize(args.UserId, commandErrorGeneric, nil)), nil
	}
	if errMsg != nil {
		return p.ephemeral(p.localizeError(args.UserId, errMsg)), nil
	}
	return response, nil
}

func (p *MovievotePlugin) ephemeral(text string) *model.CommandResponse {
	return p.getCommandResponse(model.CommandResponseTypeEphemeral, text, nil)
}

func (p *MovievotePlugin) getCommandResponse(responseType, text string, attachments []*model.SlackAttachment) *model.CommandResponse {
	return &model.CommandResponse{
		ResponseType: responseType,
		Text:         text,
		Username:     botUserName,
		Type:         model.PostTypeDefault,
		Attachments:  attachments,
	}
}

// usageError returns an invalid input rejection that shows the correct usage of an action.
func (p *MovievotePlugin) usageError(usage string) *utils.ErrorMessage {
	return &utils.ErrorMessage{
		Message: commandUsage,
		Data: map[string]interface{}{
			"Trigger": p.getConfiguration().Trigger,
			"Usage":   usage,
		},
	}
}

func parsePollID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func (p *MovievotePlugin) executeCreate(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	id, errMsg, err := p.createPoll(args.UserId, args.ChannelId, params)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.localize(args.UserId, responsePollCreated, map[string]interface{}{"PollID": id})), nil, nil
}

func (p *MovievotePlugin) executeStart(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 2 {
		return nil, p.usageError(usageStart), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageStart), nil
	}
	minutes, err := strconv.Atoi(params[1])
	if err != nil {
		return nil, poll.InvalidInput("duration must be a whole number of minutes"), nil
	}

	if _, errMsg, err := p.startPoll(args.UserId, pollID, minutes); errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.bundle.LocalizeWithConfig(p.bundle.GetUserLocalizer(args.UserId), &i18n.LocalizeConfig{
		DefaultMessage: responsePollStarted,
		TemplateData:   map[string]interface{}{"PollID": pollID, "Duration": minutes},
		PluralCount:    minutes,
	})), nil, nil
}

func (p *MovievotePlugin) executeVote(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 2 {
		return nil, p.usageError(usageVote), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageVote), nil
	}

	if errMsg, err := p.vote(args.UserId, pollID, params[1]); errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.localize(args.UserId, responseVoteCounted, nil)), nil, nil
}

func (p *MovievotePlugin) executeEnd(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 1 {
		return nil, p.usageError(usageEnd), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageEnd), nil
	}

	if _, errMsg, err := p.endPoll(args.UserId, pollID); errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.localize(args.UserId, responsePollEnded, map[string]interface{}{"PollID": pollID})), nil, nil
}

func (p *MovievotePlugin) executeWinner(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 1 {
		return nil, p.usageError(usageWin), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageWin), nil
	}

	winner, errMsg, err := p.registry.Winner(pollID)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.localize(args.UserId, responseWinner, map[string]interface{}{
		"PollID": pollID,
		"Winner": winner,
	})), nil, nil
}

func (p *MovievotePlugin) executeVotes(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 2 {
		return nil, p.usageError(usageVotes), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageVotes), nil
	}

	votes, errMsg, err := p.registry.VotesFor(pollID, params[1])
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	return p.ephemeral(p.bundle.LocalizeWithConfig(p.bundle.GetUserLocalizer(args.UserId), &i18n.LocalizeConfig{
		DefaultMessage: responseVotes,
		TemplateData: map[string]interface{}{
			"PollID":    pollID,
			"Candidate": params[1],
			"Votes":     votes,
		},
		PluralCount: votes,
	})), nil, nil
}

func (p *MovievotePlugin) executeList(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) > 1 {
		return nil, p.usageError(usageList), nil
	}

	userID := args.UserId
	if len(params) == 1 {
		username := strings.TrimPrefix(params[0], "@")
		user, appErr := p.API.GetUserByUsername(username)
		if appErr != nil {
			return nil, &utils.ErrorMessage{
				Message: commandUserNotFound,
				Data:    map[string]interface{}{"Username": "@" + username},
			}, nil
		}
		userID = user.Id
	}
	displayName, appErr := p.ConvertUserIDToDisplayName(userID)
	if appErr != nil {
		return nil, nil, appErr
	}

	ids, err := p.registry.PollsByCreator(userID)
	if err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return p.ephemeral(p.localize(args.UserId, responseListEmpty, map[string]interface{}{"User": displayName})), nil, nil
	}

	formatted := make([]string, 0, len(ids))
	for _, id := range ids {
		formatted = append(formatted, "#"+strconv.FormatInt(id, 10))
	}
	return p.ephemeral(p.localize(args.UserId, responseList, map[string]interface{}{
		"User":    displayName,
		"PollIDs": strings.Join(formatted, ", "),
	})), nil, nil
}

func (p *MovievotePlugin) executeShow(args *model.CommandArgs, params []string) (*model.CommandResponse, *utils.ErrorMessage, error) {
	if len(params) != 1 {
		return nil, p.usageError(usageShow), nil
	}
	pollID, ok := parsePollID(params[0])
	if !ok {
		return nil, p.usageError(usageShow), nil
	}

	pl, errMsg, err := p.registry.Get(pollID)
	if errMsg != nil || err != nil {
		return nil, errMsg, err
	}
	post, appErr := p.pollPost(pl)
	if appErr != nil {
		return nil, nil, appErr
	}
	return p.getCommandResponse(model.CommandResponseTypeEphemeral, "", post.Attachments()), nil, nil
}

func getCommand(trigger string) *model.Command {
	autocomplete := model.NewAutocompleteData(trigger, "[command]", "Available commands: create, start, vote, end, winner, votes, list, show, help")
	for _, c := range []struct {
		name, hint, help string
	}{
		{"create", "\"Movie 1\" \"Movie 2\" ...", "Create a movie poll"},
		{"start", "<poll id> <minutes>", "Open a poll for voting"},
		{"vote", "<poll id> \"Movie\"", "Vote for a movie"},
		{"end", "<poll id>", "End a poll after its voting time"},
		{"winner", "<poll id>", "Show the winning movie"},
		{"votes", "<poll id> \"Movie\"", "Show the votes of a movie"},
		{"list", "[@user]", "List the polls a user created"},
		{"show", "<poll id>", "Show a poll"},
		{"help", "", "Show help"},
	} {
		autocomplete.AddCommand(model.NewAutocompleteData(c.name, c.hint, c.help))
	}

	return &model.Command{
		Trigger:          trigger,
		DisplayName:      botDisplayName,
		Description:      "Movie polls by https://github.com/matterpoll/movievote",
		AutoComplete:     true,
		AutoCompleteDesc: "Create and run movie polls",
		AutoCompleteHint: "[command]",
		AutocompleteData: autocomplete,
	}
}

package plugin

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/utils"
)

const userIDHeader = "Mattermost-User-ID"

type (
	createPollRequest struct {
		Candidates []string `json:"candidates"`
		ChannelID  string   `json:"channel_id"`
	}
	startPollRequest struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	voteRequest struct {
		Candidate string `json:"candidate"`
	}

	errorResponse struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}

	candidateView struct {
		Name  string `json:"name"`
		Votes *int   `json:"votes,omitempty"`
	}
	pollView struct {
		ID         int64            `json:"id"`
		Creator    string           `json:"creator"`
		ChannelID  string           `json:"channel_id,omitempty"`
		PostID     string           `json:"post_id,omitempty"`
		State      poll.State       `json:"state"`
		CreatedAt  int64            `json:"created_at"`
		Deadline   int64            `json:"deadline,omitempty"`
		EndedAt    int64            `json:"ended_at,omitempty"`
		Candidates []*candidateView `json:"candidates"`
		TotalVotes *int             `json:"total_votes,omitempty"`
	}
)

var errNoChannelPermission = &utils.ErrorMessage{
	Message: &i18n.Message{
		ID:    "api.error.noChannelPermission",
		Other: "You are not allowed to post in this channel.",
	},
}

var infoMessage = "Thanks for using Movievote v" + manifest.Version + "\n"

// InitAPI initializes the REST API
func (p *MovievotePlugin) InitAPI() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", p.handleInfo).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(checkAuthenticity)
	apiV1.HandleFunc("/polls", p.handleCreatePoll).Methods(http.MethodPost)
	apiV1.HandleFunc("/polls", p.handleListPolls).Methods(http.MethodGet)

	pollRouter := apiV1.PathPrefix("/polls/{id:[0-9]+}").Subrouter()
	pollRouter.HandleFunc("", p.handleGetPoll).Methods(http.MethodGet)
	pollRouter.HandleFunc("/start", p.handleStartPoll).Methods(http.MethodPost)
	pollRouter.HandleFunc("/vote", p.handleVote).Methods(http.MethodPost)
	pollRouter.HandleFunc("/end", p.handleEndPoll).Methods(http.MethodPost)
	pollRouter.HandleFunc("/winner", p.handleWinner).Methods(http.MethodGet)
	pollRouter.HandleFunc("/votes", p.handleVotes).Methods(http.MethodGet)
	pollRouter.HandleFunc("/metadata", p.handlePollMetadata).Methods(http.MethodGet)
	pollRouter.HandleFunc("/actions/vote/{index:[0-9]+}", p.handleVoteAction).Methods(http.MethodPost)
	return r
}

func (p *MovievotePlugin) ServeHTTP(c *plugin.Context, w http.ResponseWriter, r *http.Request) {
	p.API.LogDebug("New request:", "Host", r.Host, "RequestURI", r.RequestURI, "Method", r.Method)
	p.router.ServeHTTP(w, r)
}

func (p *MovievotePlugin) handleInfo(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, infoMessage)
}

func checkAuthenticity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userIDHeader) == "" {
			http.Error(w, "not authorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusFor maps a rejection to the HTTP status it is reported with.
func statusFor(errMsg *utils.ErrorMessage) int {
	switch {
	case errors.Is(errMsg, poll.ErrInvalidInput), errors.Is(errMsg, poll.ErrCandidateNotFound):
		return http.StatusBadRequest
	case errors.Is(errMsg, poll.ErrUnauthorized), errors.Is(errMsg, errNoChannelPermission):
		return http.StatusForbidden
	case errors.Is(errMsg, poll.ErrPollNotFound):
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func (p *MovievotePlugin) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		p.API.LogWarn("failed to encode response", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		p.API.LogWarn("failed to write response", "error", err.Error())
	}
}

// writeResult writes a rejection or an internal failure if any is given and reports whether it did.
func (p *MovievotePlugin) writeResult(w http.ResponseWriter, r *http.Request, errMsg *utils.ErrorMessage, err error) bool {
	userID := r.Header.Get(userIDHeader)
	if err != nil {
		p.API.LogWarn("failed to handle request", "RequestURI", r.RequestURI, "error", err.Error())
		p.writeJSON(w, http.StatusInternalServerError, &errorResponse{
			ID:      commandErrorGeneric.ID,
			Message: p.localize(userID, commandErrorGeneric, nil),
		})
		return true
	}
	if errMsg != nil {
		p.writeJSON(w, statusFor(errMsg), &errorResponse{
			ID:      errMsg.Message.ID,
			Message: p.localizeError(userID, errMsg),
		})
		return true
	}
	return false
}

func (p *MovievotePlugin) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		p.writeResult(w, r, poll.InvalidInput("malformed request body"), nil)
		return false
	}
	return true
}

func pollIDFromVars(r *http.Request) int64 {
	// The route only matches digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (p *MovievotePlugin) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var request createPollRequest
	if !p.decodeBody(w, r, &request) {
		return
	}

	userID := r.Header.Get(userIDHeader)
	// The caller must be allowed to post in the target channel.
	if request.ChannelID != "" && !p.API.HasPermissionToChannel(userID, request.ChannelID, model.PermissionCreatePost) {
		p.writeResult(w, r, errNoChannelPermission, nil)
		return
	}

	id, errMsg, err := p.createPoll(userID, request.ChannelID, request.Candidates)
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (p *MovievotePlugin) handleListPolls(w http.ResponseWriter, r *http.Request) {
	creator := r.URL.Query().Get("creator")
	if creator == "" {
		creator = r.Header.Get(userIDHeader)
	}

	ids, err := p.registry.PollsByCreator(creator)
	if p.writeResult(w, r, nil, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, map[string][]int64{"poll_ids": ids})
}

func (p *MovievotePlugin) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pl, errMsg, err := p.registry.Get(pollIDFromVars(r))
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, p.newPollView(pl))
}

// newPollView hides the tallies of polls that are not ended yet if tallies are sealed.
func (p *MovievotePlugin) newPollView(pl *poll.Poll) *pollView {
	showTallies := pl.State == poll.StateEnded || !p.registry.Options().SealTallies

	view := &pollView{
		ID:         pl.ID,
		Creator:    pl.Creator,
		ChannelID:  pl.ChannelID,
		PostID:     pl.PostID,
		State:      pl.State,
		CreatedAt:  pl.CreatedAt,
		Deadline:   pl.Deadline,
		EndedAt:    pl.EndedAt,
		Candidates: []*candidateView{},
	}
	for _, c := range pl.Candidates {
		cv := &candidateView{Name: c.Name}
		if showTallies {
			votes := c.Votes
			cv.Votes = &votes
		}
		view.Candidates = append(view.Candidates, cv)
	}
	if showTallies {
		total := pl.TotalVotes()
		view.TotalVotes = &total
	}
	return view
}

func (p *MovievotePlugin) handleStartPoll(w http.ResponseWriter, r *http.Request) {
	var request startPollRequest
	if !p.decodeBody(w, r, &request) {
		return
	}

	pl, errMsg, err := p.startPoll(r.Header.Get(userIDHeader), pollIDFromVars(r), request.DurationMinutes)
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, p.newPollView(pl))
}

func (p *MovievotePlugin) handleVote(w http.ResponseWriter, r *http.Request) {
	var request voteRequest
	if !p.decodeBody(w, r, &request) {
		return
	}

	errMsg, err := p.vote(r.Header.Get(userIDHeader), pollIDFromVars(r), request.Candidate)
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *MovievotePlugin) handleEndPoll(w http.ResponseWriter, r *http.Request) {
	pl, errMsg, err := p.endPoll(r.Header.Get(userIDHeader), pollIDFromVars(r))
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, p.newPollView(pl))
}

func (p *MovievotePlugin) handleWinner(w http.ResponseWriter, r *http.Request) {
	winner, errMsg, err := p.registry.Winner(pollIDFromVars(r))
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, map[string]string{"winner": winner})
}

func (p *MovievotePlugin) handleVotes(w http.ResponseWriter, r *http.Request) {
	candidate := r.URL.Query().Get("candidate")

	votes, errMsg, err := p.registry.VotesFor(pollIDFromVars(r), candidate)
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidate": candidate,
		"votes":     votes,
	})
}

func (p *MovievotePlugin) handlePollMetadata(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)

	pl, errMsg, err := p.registry.Get(pollIDFromVars(r))
	if p.writeResult(w, r, errMsg, err) {
		return
	}
	p.writeJSON(w, http.StatusOK, pl.NewMetadata(userID, p.registry.IsOwner(userID)).ToMap())
}

// handleVoteAction handles clicks on the vote buttons of a poll post.
// The outcome is sent to the voter as ephemeral post.
func (p *MovievotePlugin) handleVoteAction(w http.ResponseWriter, r *http.Request) {
	request := &model.PostActionIntegrationRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		p.API.LogWarn("failed to decode PostActionIntegrationRequest", "error", err.Error())
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	userID := r.Header.Get(userIDHeader)
	pollID := pollIDFromVars(r)
	index, _ := strconv.Atoi(mux.Vars(r)["index"])

	message := p.voteByIndex(userID, pollID, index)
	p.SendEphemeralPost(request.ChannelId, userID, request.PostId, message)

	p.writeJSON(w, http.StatusOK, &model.PostActionIntegrationResponse{})
}

func (p *MovievotePlugin) voteByIndex(userID string, pollID int64, index int) string {
	pl, errMsg, err := p.registry.Get(pollID)
	if err == nil && errMsg == nil {
		if index >= len(pl.Candidates) {
			errMsg = poll.InvalidInput("unknown vote button")
		} else {
			errMsg, err = p.vote(userID, pollID, pl.Candidates[index].Name)
		}
	}

	if err != nil {
		p.API.LogWarn("failed to handle vote", "pollID", pollID, "userID", userID, "error", err.Error())
		return p.localize(userID, commandErrorGeneric, nil)
	}
	if errMsg != nil {
		return p.localizeError(userID, errMsg)
	}
	return p.localize(userID, responseVoteCounted, nil)
}

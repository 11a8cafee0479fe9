package plugin

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blang/semver/v4"
	"github.com/gorilla/mux"
	pluginapi "github.com/mattermost/mattermost-plugin-api"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	root "github.com/matterpoll/movievote"
	"github.com/matterpoll/movievote/server/registry"
	"github.com/matterpoll/movievote/server/store"
	"github.com/matterpoll/movievote/server/store/kvstore"
	"github.com/matterpoll/movievote/server/store/redisstore"
	"github.com/matterpoll/movievote/server/utils"
)

// MovievotePlugin is the object to run the plugin
type MovievotePlugin struct {
	plugin.MattermostPlugin
	router   *mux.Router
	Store    store.Store
	registry *registry.Registry
	bundle   *utils.Bundle

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration

	botUserID string

	// timersLock guards deadlineTimers.
	timersLock     sync.Mutex
	deadlineTimers map[int64]*time.Timer
}

var manifest = root.Manifest

const (
	minimumServerVersion = "6.2.1"

	botUserName    = "movievote"
	botDisplayName = "Movievote"
	botDescription = "Bot account of the Movievote plugin."
)

// NewMovievotePlugin returns an initialized Movievote plugin
func NewMovievotePlugin() *MovievotePlugin {
	return &MovievotePlugin{
		deadlineTimers: map[int64]*time.Timer{},
	}
}

// OnActivate opens the store, ensures the bot account and registers the slash command.
func (p *MovievotePlugin) OnActivate() error {
	if err := p.checkServerVersion(); err != nil {
		return err
	}
	configuration := p.getConfiguration()

	s, err := p.openStore(configuration)
	if err != nil {
		return errors.Wrap(err, "failed to open store")
	}
	p.Store = s

	bundle, err := utils.InitBundle(p.API, "assets/i18n")
	if err != nil {
		return err
	}
	p.bundle = bundle

	client := pluginapi.NewClient(p.API, p.Driver)
	botUserID, err := client.Bot.EnsureBot(&model.Bot{
		Username:    botUserName,
		DisplayName: botDisplayName,
		Description: botDescription,
	})
	if err != nil {
		return errors.Wrap(err, "failed to ensure bot user")
	}
	p.botUserID = botUserID

	reg, err := p.newRegistry(s, configuration)
	if err != nil {
		return err
	}
	p.registry = reg

	if err := p.API.RegisterCommand(getCommand(configuration.Trigger)); err != nil {
		return errors.Wrap(err, "failed to register command")
	}

	p.router = p.InitAPI()
	p.rearmDeadlines()

	return nil
}

// OnDeactivate unregisters the command and stops pending deadline notifications.
func (p *MovievotePlugin) OnDeactivate() error {
	p.stopDeadlines()

	if p.Store != nil {
		if err := p.Store.Close(); err != nil {
			p.API.LogWarn("Failed to close store", "error", err.Error())
		}
	}

	err := p.API.UnregisterCommand("", p.getConfiguration().Trigger)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate command")
	}
	return nil
}

// checkServerVersion checks Mattermost Server has at least the required version
func (p *MovievotePlugin) checkServerVersion() error {
	serverVersion, err := semver.Parse(p.API.GetServerVersion())
	if err != nil {
		return errors.Wrap(err, "failed to parse server version")
	}

	r := semver.MustParseRange(">=" + minimumServerVersion)
	if !r(serverVersion) {
		return fmt.Errorf("this plugin requires Mattermost v%s or later", minimumServerVersion)
	}

	return nil
}

// openStore returns a redis store if a Redis URL is configured and the KV store otherwise.
func (p *MovievotePlugin) openStore(c *configuration) (store.Store, error) {
	if c.RedisURL == "" {
		return kvstore.NewStore(p.API, manifest.Version)
	}

	client, err := redisstore.Connect(c.RedisURL)
	if err != nil {
		return nil, err
	}
	p.API.LogInfo("Using redis to store polls")
	return redisstore.NewStore(client, redisstore.DefaultPrefix, manifest.Version)
}

// newRegistry sets up the poll registry with the configured owner. Once an owner has been
// stored, the setting is ignored.
func (p *MovievotePlugin) newRegistry(s store.Store, c *configuration) (*registry.Registry, error) {
	ownerID, err := p.resolveOwner(c.Owner)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(s, ownerID, registry.WithOptions(c.registryOptions()))
	if errors.Is(err, registry.ErrNoOwner) {
		return nil, errors.New("the Poll Owner setting must be set before Movievote can be activated")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up poll registry")
	}
	if ownerID != "" && reg.Owner() != ownerID {
		p.API.LogInfo("The poll owner was fixed on first activation, ignoring configured owner", "owner", reg.Owner(), "configured", c.Owner)
	}
	return reg, nil
}

// resolveOwner returns the user ID of the configured owner username.
// An empty username resolves to an empty ID, in which case the stored owner is used.
func (p *MovievotePlugin) resolveOwner(username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", nil
	}

	user, appErr := p.API.GetUserByUsername(username)
	if appErr != nil {
		return "", errors.Wrapf(appErr, "failed to find poll owner %s", username)
	}
	return user.Id, nil
}

// ConvertUserIDToDisplayName returns the display name to a given user ID
func (p *MovievotePlugin) ConvertUserIDToDisplayName(userID string) (string, *model.AppError) {
	user, err := p.API.GetUser(userID)
	if err != nil {
		return "", err
	}
	displayName := user.GetDisplayName(model.ShowUsername)
	displayName = "@" + displayName
	return displayName, nil
}

// ConvertCreatorIDToDisplayName returns the display name to a given user ID of a poll creator
func (p *MovievotePlugin) ConvertCreatorIDToDisplayName(creatorID string) (string, *model.AppError) {
	user, err := p.API.GetUser(creatorID)
	if err != nil {
		return "", err
	}
	displayName := user.GetDisplayName(model.ShowNicknameFullName)
	return displayName, nil
}

// SendEphemeralPost sends an ephemeral post to a user as the bot
func (p *MovievotePlugin) SendEphemeralPost(channelID, userID, rootID, message string) {
	ephemeralPost := &model.Post{
		ChannelId: channelID,
		UserId:    p.botUserID,
		RootId:    rootID,
		Message:   message,
	}
	_ = p.API.SendEphemeralPost(userID, ephemeralPost)
}

package plugin

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin/plugintest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/registry"
	"github.com/matterpoll/movievote/server/store"
	"github.com/matterpoll/movievote/server/store/memstore"
	"github.com/matterpoll/movievote/server/store/mockstore"
	"github.com/matterpoll/movievote/server/utils/testutils"
)

const trigger = "movievote"

func setupTestPlugin(t *testing.T, api *plugintest.API, s store.Store, opts ...registry.Option) *MovievotePlugin {
	reg, err := registry.New(s, testutils.GetOwnerID(), opts...)
	require.NoError(t, err)

	p := NewMovievotePlugin()
	p.setConfiguration(&configuration{
		Trigger: trigger,
	})
	p.SetAPI(api)
	p.Store = s
	p.registry = reg
	p.bundle = testutils.GetBundle()
	p.botUserID = testutils.GetBotUserID()
	p.router = p.InitAPI()

	return p
}

// newMockStore returns a mock store that already knows the poll owner.
func newMockStore() *mockstore.Store {
	s := &mockstore.Store{}
	s.SystemStore.On("EnsureOwner", testutils.GetOwnerID()).Return(testutils.GetOwnerID(), nil)
	return s
}

// seedPoll stores p in s as if it had been created through the registry.
func seedPoll(t *testing.T, s *memstore.Store, p *poll.Poll) {
	t.Helper()
	for {
		id, err := s.Poll().NextID()
		require.NoError(t, err)
		if id == p.ID {
			break
		}
	}
	require.NoError(t, s.Poll().Insert(p))
	require.NoError(t, s.Creator().Add(p.Creator, p.ID))
}

func TestPluginOnActivate(t *testing.T) {
	for name, test := range map[string]struct {
		SetupAPI    func(*plugintest.API) *plugintest.API
		ShouldError bool
	}{
		"lesser minor version than minimumServerVersion": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				m := semver.MustParse(minimumServerVersion)
				if m.Minor == 0 {
					m.Major--
				} else {
					m.Minor--
				}
				m.Patch = 0
				api.On("GetServerVersion").Return(m.String())
				return api
			},
			ShouldError: true,
		},
		"GetServerVersion not implemented, returns empty string": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetServerVersion").Return("")
				return api
			},
			ShouldError: true,
		},
		"same version as minimumServerVersion, store setup fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetServerVersion").Return(minimumServerVersion)
				api.On("KVGet", "version").Return(nil, &model.AppError{})
				return api
			},
			ShouldError: true,
		},
		"greater minor version than minimumServerVersion, store setup fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				m := semver.MustParse(minimumServerVersion)
				m.Minor++
				m.Patch = 0
				api.On("GetServerVersion").Return(m.String())
				api.On("KVGet", "version").Return(nil, &model.AppError{})
				return api
			},
			ShouldError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)

			p := NewMovievotePlugin()
			p.setConfiguration(&configuration{
				Trigger: trigger,
			})
			p.SetAPI(api)
			err := p.OnActivate()

			if test.ShouldError {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
			assert.Nil(t, p.registry)
		})
	}
}

func TestPluginOnDeactivate(t *testing.T) {
	t.Run("all fine", func(t *testing.T) {
		api := &plugintest.API{}
		p := setupTestPlugin(t, api, memstore.NewStore())
		api.On("UnregisterCommand", "", trigger).Return(nil)
		defer api.AssertExpectations(t)

		pl := testutils.GetOngoingPoll()
		pl.Deadline = model.GetMillis() + 60*60*1000
		p.scheduleDeadline(pl)

		err := p.OnDeactivate()
		assert.Nil(t, err)
		assert.Empty(t, p.deadlineTimers)
	})

	t.Run("UnregisterCommand fails", func(t *testing.T) {
		api := &plugintest.API{}
		p := setupTestPlugin(t, api, memstore.NewStore())
		api.On("UnregisterCommand", "", trigger).Return(&model.AppError{})
		defer api.AssertExpectations(t)

		err := p.OnDeactivate()
		assert.NotNil(t, err)
	})

	t.Run("closing the store fails", func(t *testing.T) {
		api := &plugintest.API{}
		s := &failingCloseStore{Store: memstore.NewStore()}
		p := setupTestPlugin(t, api, s)
		api.On("LogWarn", testutils.GetMockArgumentsWithType("string", 3)...)
		api.On("UnregisterCommand", "", trigger).Return(nil)
		defer api.AssertExpectations(t)

		err := p.OnDeactivate()
		assert.Nil(t, err)
	})
}

type failingCloseStore struct {
	*memstore.Store
}

func (s *failingCloseStore) Close() error { return errors.New("close failed") }

func TestPluginResolveOwner(t *testing.T) {
	for name, test := range map[string]struct {
		SetupAPI      func(*plugintest.API) *plugintest.API
		Username      string
		ExpectedOwner string
		ShouldError   bool
	}{
		"empty username": {
			SetupAPI:      func(api *plugintest.API) *plugintest.API { return api },
			Username:      " ",
			ExpectedOwner: "",
		},
		"username with @": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUserByUsername", "alice").Return(&model.User{Id: testutils.GetOwnerID()}, nil)
				return api
			},
			Username:      "@alice",
			ExpectedOwner: testutils.GetOwnerID(),
		},
		"unknown user": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUserByUsername", "bob").Return(nil, &model.AppError{})
				return api
			},
			Username:    "bob",
			ShouldError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			p := NewMovievotePlugin()
			p.SetAPI(api)

			owner, err := p.resolveOwner(test.Username)

			assert.Equal(t, test.ExpectedOwner, owner)
			if test.ShouldError {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestPluginNewRegistry(t *testing.T) {
	for name, test := range map[string]struct {
		SetupAPI      func(*plugintest.API) *plugintest.API
		StoredOwner   string
		Owner         string
		ExpectedOwner string
		ShouldError   bool
	}{
		"fresh install without owner": {
			SetupAPI:    func(api *plugintest.API) *plugintest.API { return api },
			ShouldError: true,
		},
		"fresh install with owner": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUserByUsername", "alice").Return(&model.User{Id: testutils.GetOwnerID()}, nil)
				return api
			},
			Owner:         "alice",
			ExpectedOwner: testutils.GetOwnerID(),
		},
		"stored owner, setting cleared": {
			SetupAPI:      func(api *plugintest.API) *plugintest.API { return api },
			StoredOwner:   testutils.GetOwnerID(),
			ExpectedOwner: testutils.GetOwnerID(),
		},
		"stored owner, setting changed": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUserByUsername", "bob").Return(&model.User{Id: "bobID"}, nil)
				api.On("LogInfo", testutils.GetMockArgumentsWithType("string", 5)...)
				return api
			},
			StoredOwner:   testutils.GetOwnerID(),
			Owner:         "bob",
			ExpectedOwner: testutils.GetOwnerID(),
		},
		"unknown owner": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUserByUsername", "bob").Return(nil, &model.AppError{})
				return api
			},
			Owner:       "bob",
			ShouldError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			s := memstore.NewStore()
			if test.StoredOwner != "" {
				_, err := s.System().EnsureOwner(test.StoredOwner)
				require.NoError(t, err)
			}
			p := NewMovievotePlugin()
			p.SetAPI(api)

			reg, err := p.newRegistry(s, &configuration{Trigger: trigger, Owner: test.Owner})

			if test.ShouldError {
				assert.NotNil(t, err)
				assert.Nil(t, reg)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, test.ExpectedOwner, reg.Owner())
		})
	}
}

func TestPluginOpenStore(t *testing.T) {
	t.Run("KV store on fresh install", func(t *testing.T) {
		api := &plugintest.API{}
		api.On("KVGet", "version").Return(nil, nil)
		api.On("LogWarn", testutils.GetMockArgumentsWithType("string", 1)...)
		api.On("KVSet", "version", []byte("1.0.0")).Return(nil)
		defer api.AssertExpectations(t)
		p := NewMovievotePlugin()
		p.SetAPI(api)

		s, err := p.openStore(&configuration{Trigger: trigger})

		require.Nil(t, err)
		assert.NotNil(t, s)
	})
	t.Run("invalid redis URL", func(t *testing.T) {
		api := &plugintest.API{}
		defer api.AssertExpectations(t)
		p := NewMovievotePlugin()
		p.SetAPI(api)

		s, err := p.openStore(&configuration{Trigger: trigger, RedisURL: "not a url"})

		assert.NotNil(t, err)
		assert.Nil(t, s)
	})
}

func TestPluginConvertUserIDToDisplayName(t *testing.T) {
	for name, test := range map[string]struct {
		SetupAPI            func(*plugintest.API) *plugintest.API
		ExpectedDisplayName string
		ShouldError         bool
	}{
		"all fine": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUser", "userID1").Return(&model.User{Username: "user1"}, nil)
				return api
			},
			ExpectedDisplayName: "@user1",
		},
		"GetUser fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUser", "userID1").Return(nil, &model.AppError{})
				return api
			},
			ShouldError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			p := setupTestPlugin(t, api, memstore.NewStore())

			displayName, appErr := p.ConvertUserIDToDisplayName("userID1")

			assert.Equal(t, test.ExpectedDisplayName, displayName)
			if test.ShouldError {
				assert.NotNil(t, appErr)
			} else {
				assert.Nil(t, appErr)
			}
		})
	}
}

func TestPluginConvertCreatorIDToDisplayName(t *testing.T) {
	for name, test := range map[string]struct {
		SetupAPI            func(*plugintest.API) *plugintest.API
		ExpectedDisplayName string
		ShouldError         bool
	}{
		"all fine": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUser", "userID1").Return(&model.User{Username: "user1", FirstName: "John", LastName: "Doe"}, nil)
				return api
			},
			ExpectedDisplayName: "John Doe",
		},
		"GetUser fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("GetUser", "userID1").Return(nil, &model.AppError{})
				return api
			},
			ShouldError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			p := setupTestPlugin(t, api, memstore.NewStore())

			displayName, appErr := p.ConvertCreatorIDToDisplayName("userID1")

			assert.Equal(t, test.ExpectedDisplayName, displayName)
			if test.ShouldError {
				assert.NotNil(t, appErr)
			} else {
				assert.Nil(t, appErr)
			}
		})
	}
}

func TestPluginSendEphemeralPost(t *testing.T) {
	api := &plugintest.API{}
	p := setupTestPlugin(t, api, memstore.NewStore())
	api.On("SendEphemeralPost", "userID1", &model.Post{
		ChannelId: testutils.GetChannelID(),
		UserId:    testutils.GetBotUserID(),
		RootId:    testutils.GetPostID(),
		Message:   "hello",
	}).Return(nil)
	defer api.AssertExpectations(t)

	p.SendEphemeralPost(testutils.GetChannelID(), "userID1", testutils.GetPostID(), "hello")
}

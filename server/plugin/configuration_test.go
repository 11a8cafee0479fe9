package plugin

import (
	"errors"
	"testing"

	"github.com/mattermost/mattermost-server/v6/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/matterpoll/movievote/server/registry"
	"github.com/matterpoll/movievote/server/store/memstore"
)

func TestOnConfigurationChange(t *testing.T) {
	loadConfiguration := func(api *plugintest.API, c configuration) {
		api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(nil).Run(func(args mock.Arguments) {
			arg := args.Get(0).(*configuration)
			*arg = c
		})
	}

	for name, test := range map[string]struct {
		SetupAPI              func(*plugintest.API) *plugintest.API
		Configuration         *configuration
		ExpectedConfiguration *configuration
		ExpectedOptions       registry.Options
		ShouldError           bool
	}{
		"Load and save successful, with old configuration": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: "movie", SealTallies: true})
				api.On("UnregisterCommand", "", "oldTrigger").Return(nil)
				api.On("RegisterCommand", getCommand("movie")).Return(nil)
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "movie", SealTallies: true},
			ExpectedOptions:       registry.Options{SealTallies: true},
		},
		"Load and save successful, without old configuration": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: "movie", AllowEarlyWinner: true})
				api.On("RegisterCommand", getCommand("movie")).Return(nil)
				return api
			},
			Configuration:         nil,
			ExpectedConfiguration: &configuration{Trigger: "movie", AllowEarlyWinner: true},
			ExpectedOptions:       registry.Options{AllowEarlyWinner: true},
		},
		"Redis URL changed": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: "movie", RedisURL: "redis://localhost:6379/0"})
				api.On("UnregisterCommand", "", "movie").Return(nil)
				api.On("RegisterCommand", getCommand("movie")).Return(nil)
				api.On("LogInfo", "The store backend changes on the next plugin activation")
				return api
			},
			Configuration:         &configuration{Trigger: "movie"},
			ExpectedConfiguration: &configuration{Trigger: "movie", RedisURL: "redis://localhost:6379/0"},
		},
		"LoadPluginConfiguration fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				api.On("LoadPluginConfiguration", mock.AnythingOfType("*plugin.configuration")).Return(errors.New("LoadPluginConfiguration failed"))
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"Load empty trigger": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: ""})
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"UnregisterCommand fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: "movie"})
				api.On("UnregisterCommand", "", "oldTrigger").Return(errors.New("UnregisterCommand failed"))
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
		"RegisterCommand fails": {
			SetupAPI: func(api *plugintest.API) *plugintest.API {
				loadConfiguration(api, configuration{Trigger: "movie"})
				api.On("UnregisterCommand", "", "oldTrigger").Return(nil)
				api.On("RegisterCommand", getCommand("movie")).Return(errors.New("RegisterCommand failed"))
				return api
			},
			Configuration:         &configuration{Trigger: "oldTrigger"},
			ExpectedConfiguration: &configuration{Trigger: "oldTrigger"},
			ShouldError:           true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			api := test.SetupAPI(&plugintest.API{})
			defer api.AssertExpectations(t)
			p := setupTestPlugin(t, api, memstore.NewStore())
			p.setConfiguration(test.Configuration)

			err := p.OnConfigurationChange()
			assert.Equal(test.ExpectedConfiguration, p.getConfiguration())
			assert.Equal(test.ExpectedOptions, p.registry.Options())
			if test.ShouldError {
				assert.NotNil(err)
			} else {
				assert.Nil(err)
			}
		})
	}

	t.Run("before activation only the configuration is stored", func(t *testing.T) {
		api := &plugintest.API{}
		loadConfiguration(api, configuration{Trigger: "movie", Owner: "alice"})
		defer api.AssertExpectations(t)
		p := NewMovievotePlugin()
		p.SetAPI(api)

		err := p.OnConfigurationChange()
		assert.Nil(t, err)
		assert.Equal(t, &configuration{Trigger: "movie", Owner: "alice"}, p.getConfiguration())
	})
}

func TestConfigurationRegistryOptions(t *testing.T) {
	c := &configuration{Trigger: "movie", AllowEarlyWinner: true, SealTallies: true}
	assert.Equal(t, registry.Options{AllowEarlyWinner: true, SealTallies: true}, c.registryOptions())
}

func TestConfiguration(t *testing.T) {
	t.Run("null configuration", func(t *testing.T) {
		plugin := &MovievotePlugin{}

		assert.Equal(t, &configuration{}, plugin.getConfiguration())
	})

	t.Run("changing configuration", func(t *testing.T) {
		plugin := &MovievotePlugin{}
		config1 := &configuration{Trigger: "movievote"}

		plugin.setConfiguration(config1)

		assert.Equal(t, config1, plugin.getConfiguration())

		config2 := &configuration{Trigger: "otherTrigger"}
		plugin.setConfiguration(config2)

		assert.Equal(t, config2, plugin.getConfiguration())
		assert.NotEqual(t, config1, plugin.getConfiguration())
		assert.False(t, plugin.getConfiguration() == config1)
		assert.True(t, plugin.getConfiguration() == config2)
	})

	t.Run("setting same configuration", func(t *testing.T) {
		plugin := &MovievotePlugin{}
		config := &configuration{}
		plugin.setConfiguration(config)

		assert.Panics(t, func() {
			plugin.setConfiguration(config)
		})
	})

	t.Run("clearing configuration", func(t *testing.T) {
		plugin := &MovievotePlugin{}
		config := &configuration{Trigger: "movievote"}
		plugin.setConfiguration(config)

		assert.NotPanics(t, func() {
			plugin.setConfiguration(nil)
		})

		assert.NotNil(t, plugin.getConfiguration())
		assert.NotEqual(t, plugin, plugin.getConfiguration())
	})
}

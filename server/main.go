package main

import (
	mmplugin "github.com/mattermost/mattermost-server/v6/plugin"

	"github.com/matterpoll/movievote/server/plugin"
)

func main() {
	mmplugin.ClientMain(plugin.NewMovievotePlugin())
}

package plugin

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/matterpoll/movievote/server/utils"
)

var commandErrorGeneric = &i18n.Message{
	ID:    "command.error.generic",
	Other: "Something went bad. Please try again later.",
}

// localize renders m in the locale of userID.
func (p *MovievotePlugin) localize(userID string, m *i18n.Message, data map[string]interface{}) string {
	return p.bundle.LocalizeWithConfig(p.bundle.GetUserLocalizer(userID), &i18n.LocalizeConfig{
		DefaultMessage: m,
		TemplateData:   data,
	})
}

// localizeError renders a user facing rejection in the locale of userID.
func (p *MovievotePlugin) localizeError(userID string, errMsg *utils.ErrorMessage) string {
	return p.bundle.LocalizeErrorMessage(p.bundle.GetUserLocalizer(userID), errMsg)
}

// localizeServer renders m in the server default locale, for posts everyone can see.
func (p *MovievotePlugin) localizeServer(m *i18n.Message, data map[string]interface{}) string {
	return p.bundle.LocalizeWithConfig(p.bundle.GetServerLocalizer(), &i18n.LocalizeConfig{
		DefaultMessage: m,
		TemplateData:   data,
	})
}

package notify

import (
	"github.com/mthomps/restock/internal/store"
)

// Permission answers whether notifications can currently be delivered:
// the user-level switch is on and at least one device is subscribed.
type Permission struct {
	push     *store.PushStore
	settings *store.SettingsStore
}

func NewPermission(push *store.PushStore, settings *store.SettingsStore) *Permission {
	return &Permission{push: push, settings: settings}
}

// Granted reports the current grant state. It never prompts; enabling
// notifications and registering subscriptions happen through the settings
// and push endpoints.
func (p *Permission) Granted() (bool, error) {
	enabled, err := p.settings.NotificationsEnabled()
	if err != nil {
		return false, err
	}
	if !enabled {
		return false, nil
	}
	count, err := p.push.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

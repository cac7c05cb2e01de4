package cli

import (
	"github.com/hobbyhub/hobbyhub/internal/client/clientconfig"
	"github.com/hobbyhub/hobbyhub/internal/client/session"
	"github.com/hobbyhub/hobbyhub/internal/common/httpclient"
	"github.com/hobbyhub/hobbyhub/pkg/api"
)

// newAPIClient builds an API client bound to the session restored from the
// config file. Commands defer persistSession on the returned store so token
// changes reach the config file whether the command succeeds or fails.
func newAPIClient() (*api.Client, *session.Store, clientconfig.Settings, error) {
	store, err := newSessionStore()
	if err != nil {
		return nil, nil, clientconfig.Settings{}, err
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, settings, err
	}

	hc := httpclient.NewClient(store)
	client := api.New(hc, api.WithPageSize(settings.PageSize))
	return client, store, settings, nil
}

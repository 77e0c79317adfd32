package cmd

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/config"
	"github.com/oneconcern/datahub/pkg/core"
	"github.com/oneconcern/datahub/pkg/dlogger"
)

// clientConfig resolves the client configuration from flags, environment and the profiles file.
//
// An explicit access key takes precedence over the profile.
func clientConfig() (config.ClientConfig, error) {
	cfg := config.Default()
	if key := viper.GetString(keyKey); key != "" {
		cfg.AccessKey = key
	} else {
		var err error
		cfg, err = config.LoadProfile(viper.GetString(keyProfilesFile), viper.GetString(keyProfile))
		if err != nil {
			return cfg, err
		}
	}
	if u := viper.GetString(keyURL); u != "" {
		cfg.Endpoint = u
	}
	cfg.Internal = viper.GetBool(keyInternal)
	if timeout := viper.GetDuration(keyTimeout); timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.LogLevel = viper.GetString(keyLogLevel)
	return cfg, nil
}

func cliLogger(level string) *zap.Logger {
	l, err := dlogger.GetConsoleLogger(level)
	if err != nil {
		wrapFatalln("invalid log level", err)
		return zap.NewNop()
	}
	return l
}

// newClient is patched during tests
var newClient = func() (*core.Client, error) {
	cfg, err := clientConfig()
	if err != nil {
		return nil, err
	}
	return core.NewClient(cfg,
		core.ClientLogger(cliLogger(cfg.LogLevel)),
		core.ClientMetrics(cliMetrics),
	)
}

func mustClient() *core.Client {
	c, err := newClient()
	if err != nil {
		wrapFatalln("create client", err)
	}
	return c
}

// checkoutTarget picks the revision to open a dataset at: explicit flags first, then the checked out revision
func checkoutTarget(dataset string) (core.CheckoutTarget, bool, error) {
	if datahubFlags.revision.Draft != 0 || datahubFlags.revision.Revision != "" {
		return core.CheckoutTarget{
			Revision:    datahubFlags.revision.Revision,
			DraftNumber: datahubFlags.revision.Draft,
		}, true, nil
	}
	state, err := currentState()
	if err != nil {
		return core.CheckoutTarget{}, false, err
	}
	co, ok := state.get(viper.GetString(keyProfile), dataset)
	if !ok {
		return core.CheckoutTarget{}, false, nil
	}
	return core.CheckoutTarget{Revision: co.Revision, DraftNumber: co.Draft}, true, nil
}

// openDataset gets a dataset client, checked out at the revision selected by flags or by the last checkout
func openDataset(ctx context.Context, c *core.Client, name string) (*core.DatasetClient, error) {
	d, err := c.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	target, ok, err := checkoutTarget(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return d, nil
	}
	if err := d.Checkout(ctx, target); err != nil {
		return nil, err
	}
	return d, nil
}

func mustOpenDataset(ctx context.Context) *core.DatasetClient {
	d, err := openDataset(ctx, mustClient(), datahubFlags.dataset.Name)
	if err != nil {
		wrapFatalln("open dataset "+datahubFlags.dataset.Name, err)
	}
	return d
}

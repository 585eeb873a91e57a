package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	apperr "github.com/diatide/diatide/errors"
	"github.com/diatide/diatide/tidepool"
)

var GroupsCmd = Groups{}

// Groups lists the Tidepool groups (data owners) the configured account can access.
type Groups struct {
	stdout io.Writer
}

func (cmd *Groups) Name() string {
	return "groups"
}

func (cmd *Groups) Description() string {
	return "Lists the Tidepool groups accessible to the configured account"
}

func (cmd *Groups) Usage() string {
	return ""
}

func (cmd *Groups) Help() string {
	return "Logs in to Tidepool, refreshes the session and lists the user IDs and permissions of the groups\n" +
		"accessible to the account in the configuration file.\n"
}

func (cmd *Groups) FlagSet(flagset *pflag.FlagSet) {
}

func (cmd *Groups) Execute(ctx context.Context, options *Options, args ...string) error {
	log := options.logger()

	conf, err := options.config()
	if err != nil {
		return err
	}

	client, err := tidepool.NewClient(conf.APIURL, conf.UploadURL, tidepool.WithLogger(log))
	if err != nil {
		return err
	}

	session, err := client.Login(ctx, conf.Email, conf.Password)
	if err != nil {
		return err
	}

	defer func() {
		if err := client.Logout(ctx, session); err != nil {
			log.Warn("logout failed", apperr.Fields(err)...)
		}
	}()

	if refreshed, err := client.Refresh(ctx, session); err != nil {
		return err
	} else {
		session = refreshed
	}

	groups, err := client.Groups(ctx, session)
	if err != nil {
		return err
	}

	log.Debug("retrieved groups", zap.Int("groups", len(groups)))

	keys := []string{}
	for k := range groups {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	w := stdout(cmd.stdout)
	for _, k := range keys {
		permissions := []string{}
		for p := range groups[k] {
			permissions = append(permissions, p)
		}

		sort.Strings(permissions)

		fmt.Fprintf(w, "%-24v  %v\n", k, strings.Join(permissions, ","))
	}

	return nil
}

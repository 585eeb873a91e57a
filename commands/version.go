package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// VERSION is set at build time with -ldflags "-X github.com/diatide/diatide/commands.VERSION=..."
var VERSION = "v0.1.0"

var VersionCmd = Version{}

// Version is a CLI command implementation that displays the CLI version information.
type Version struct {
	stdout io.Writer
}

func (cmd *Version) Name() string {
	return "version"
}

func (cmd *Version) Description() string {
	return "Displays the current version"
}

func (cmd *Version) Usage() string {
	return ""
}

func (cmd *Version) Help() string {
	return fmt.Sprintf("Displays the %v version in the format v<major>.<minor>.<build> e.g. v0.1.0\n", APP)
}

func (cmd *Version) FlagSet(flagset *pflag.FlagSet) {
}

func (cmd *Version) Execute(ctx context.Context, options *Options, args ...string) error {
	fmt.Fprintf(stdout(cmd.stdout), "%v\n", VERSION)

	return nil
}

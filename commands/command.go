package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/diatide/diatide/config"
	"github.com/diatide/diatide/diasend"
)

const APP = "diatide"

// Options holds the global command line options and the run logger.
type Options struct {
	Config string
	Debug  bool
	Log    *zap.Logger
}

// Command is the interface implemented by the diatide CLI commands.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help() string
	FlagSet(flagset *pflag.FlagSet)
	Execute(ctx context.Context, options *Options, args ...string) error
}

// NewCommand wraps a Command as a cobra.Command.
func NewCommand(c Command, options *Options) *cobra.Command {
	use := c.Name()
	if usage := c.Usage(); usage != "" {
		use = fmt.Sprintf("%v %v", use, usage)
	}

	cmd := cobra.Command{
		Use:           use,
		Short:         c.Description(),
		Long:          c.Help(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Execute(cmd.Context(), options, args...)
		},
	}

	c.FlagSet(cmd.Flags())

	return &cmd
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Log == nil {
		return zap.NewNop()
	}

	return o.Log
}

func (o *Options) config() (*config.Config, error) {
	path := config.DefaultPath()
	if o != nil && strings.TrimSpace(o.Config) != "" {
		path = o.Config
	}

	return config.Load(path)
}

// command holds the options common to the commands that read a Diasend workbook.
type command struct {
	workdir     string
	credentials string
	url         string
}

func (c *command) flagset(flagset *pflag.FlagSet) {
	flagset.StringVar(&c.url, "url", c.url, "Google Sheets spreadsheet URL (instead of a Diasend file)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the Google 'credentials.json' file")
	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, etc)")
}

// open returns the workbook for either the Diasend file or the Google Sheets spreadsheet.
func (c *command) open(ctx context.Context, args []string, log *zap.Logger) (diasend.Workbook, error) {
	file := ""
	if len(args) > 0 {
		file = strings.TrimSpace(args[0])
	}

	switch {
	case file != "" && strings.TrimSpace(c.url) != "":
		return nil, fmt.Errorf("specify either a Diasend file or --url, not both")

	case file != "":
		log.Info("reading Diasend workbook", zap.String("file", file))
		return diasend.Open(file)

	case strings.TrimSpace(c.url) != "":
		log.Info("reading Google Sheets workbook", zap.String("url", c.url))
		workbook, err := openSpreadsheet(ctx, c.url, c.credentials, c.workdir)
		if err != nil {
			return nil, err
		}

		return workbook, nil

	default:
		return nil, fmt.Errorf("missing Diasend file")
	}
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/diatide/diatide/commands"
	"github.com/diatide/diatide/logging"
)

var cli = []commands.Command{
	&commands.UploadCmd,
	&commands.ExtractCmd,
	&commands.GroupsCmd,
	&commands.AuthoriseCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Config: "",
	Debug:  false,
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	root := commands.NewCommand(&commands.UploadCmd, &options)
	root.Use = fmt.Sprintf("%v [<diasend file>]", commands.APP)
	root.Args = cobra.RangeArgs(0, 1)
	root.Version = commands.VERSION

	root.PersistentFlags().StringVar(&options.Config, "config", options.Config, "Configuration file path (defaults to ~/.diatide.cfg)")
	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		log, err := logging.NewLogger(commands.APP, options.Debug)
		if err != nil {
			return err
		}

		options.Log = logging.WithRunID(log, uuid.NewString())

		return nil
	}

	for _, c := range cli {
		cmd := commands.NewCommand(c, &options)
		if c == &commands.UploadCmd {
			cmd.Args = cobra.RangeArgs(0, 1)
		}

		root.AddCommand(cmd)
	}

	err := root.ExecuteContext(context.Background())

	if options.Log != nil {
		options.Log.Sync()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

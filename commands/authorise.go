package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sys/execabs"
)

var AuthoriseCmd = Authorise{
	workdir:     DEFAULT_WORKDIR,
	credentials: DEFAULT_CREDENTIALS,
	browser:     true,
}

// Authorise obtains the OAuth2 tokens used to read a Diasend export from Google Sheets.
type Authorise struct {
	workdir     string
	credentials string
	browser     bool
	stdin       io.Reader
	stdout      io.Writer
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises diatide to read Diasend exports from Google Sheets"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() string {
	var b strings.Builder

	fmt.Fprintln(&b, "Opens the Google OAuth2 consent page and stores the authorisation tokens in the working directory.")
	fmt.Fprintln(&b, "The authorisation code displayed by Google should be pasted at the prompt.")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "  Examples:")
	fmt.Fprintf(&b, `    %v authorise --credentials "credentials.json" --workdir ~/.diatide`, APP)
	fmt.Fprintln(&b)

	return b.String()
}

func (cmd *Authorise) FlagSet(flagset *pflag.FlagSet) {
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the Google 'credentials.json' file")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.BoolVar(&cmd.browser, "browser", cmd.browser, "Opens the consent page in the default browser")
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options, args ...string) error {
	log := options.logger()

	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	config, err := oauth2Config(cmd.credentials, SHEETS)
	if err != nil {
		return fmt.Errorf("invalid credentials file (%v)", err)
	}

	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	out := stdout(cmd.stdout)

	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", url)

	if cmd.browser {
		if err := execabs.Command(OPEN, url).Start(); err != nil {
			log.Warn("could not open authorisation page in browser", zap.Error(err))
		}
	}

	in := cmd.stdin
	if in == nil {
		in = os.Stdin
	}

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && strings.TrimSpace(code) == "" {
		return fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("unable to retrieve token from web (%v)", err)
	}

	file := tokens(cmd.credentials, cmd.workdir)
	if err := saveToken(file, token); err != nil {
		return err
	}

	log.Info("saved authorisation tokens", zap.String("file", file))

	return nil
}

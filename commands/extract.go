package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/diatide/diatide/diasend"
)

var ExtractCmd = Extract{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		url:         "",
	},

	file:   time.Now().Format("diasend-2006-01-02T150405.tsv"),
	format: diasend.DefaultDateFormat,
}

// Extract writes the readings extracted from a Diasend workbook to a TSV file.
type Extract struct {
	command
	file   string
	format string
}

func (cmd *Extract) Name() string {
	return "extract"
}

func (cmd *Extract) Description() string {
	return "Extracts the glucose readings from a Diasend export to a TSV file"
}

func (cmd *Extract) Usage() string {
	return "[--file <file>] [--date-format <format>] [<diasend file>]"
}

func (cmd *Extract) Help() string {
	var b strings.Builder

	fmt.Fprintln(&b, "Extracts the blood glucose meter and CGM readings from a Diasend export and stores them in a")
	fmt.Fprintln(&b, "local TSV file, without uploading anything to Tidepool. Records that cannot be parsed are skipped")
	fmt.Fprintln(&b, "and logged.")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "  Examples:")
	fmt.Fprintf(&b, `    %v extract --file "readings.tsv" diasend.xls`, APP)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, `    %v extract --date-format "%%m/%%d/%%Y %%I:%%M %%p" diasend.xlsx`, APP)
	fmt.Fprintln(&b)

	return b.String()
}

func (cmd *Extract) FlagSet(flagset *pflag.FlagSet) {
	cmd.flagset(flagset)

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'diasend-<yyyy-mm-ddTHHmmss>.tsv'")
	flagset.StringVar(&cmd.format, "date-format", cmd.format, "strptime format of the Diasend timestamps")
}

func (cmd *Extract) Execute(ctx context.Context, options *Options, args ...string) error {
	log := options.logger()

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	if strings.TrimSpace(cmd.format) == "" {
		return fmt.Errorf("--date-format is a required option")
	}

	workbook, err := cmd.open(ctx, args, log)
	if err != nil {
		return err
	}

	defer workbook.Close()

	meter, cgm, err := diasend.Extract(workbook, cmd.format, log)
	if err != nil {
		return err
	}

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".diatide-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := readingsToTSV(tmp, meter, cgm, cmd.format); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	log.Info("extracted readings to file",
		zap.String("file", cmd.file),
		zap.Int("meter", len(meter)),
		zap.Int("cgm", len(cgm)))

	return nil
}

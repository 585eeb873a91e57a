package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/diatide/diatide/config"
	"github.com/diatide/diatide/diasend"
	apperr "github.com/diatide/diatide/errors"
	"github.com/diatide/diatide/glucose"
	"github.com/diatide/diatide/tidepool"
)

var UploadCmd = Upload{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		url:         "",
	},
	dryrun: false,
}

// Upload extracts the meter and CGM readings from a Diasend workbook and uploads them to Tidepool.
type Upload struct {
	command
	dryrun bool
	stdout io.Writer
}

func (cmd *Upload) Name() string {
	return "upload"
}

func (cmd *Upload) Description() string {
	return "Uploads the glucose readings in a Diasend export to Tidepool"
}

func (cmd *Upload) Usage() string {
	return "[--dryrun] [--url <url> --credentials <file>] [<diasend file>]"
}

func (cmd *Upload) Help() string {
	var b strings.Builder

	fmt.Fprintln(&b, "Extracts the blood glucose meter and CGM readings from a Diasend export (.xls or .xlsx) or from a")
	fmt.Fprintln(&b, "Google Sheets copy of the export and uploads them to the Tidepool account in the configuration file.")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "  Examples:")
	fmt.Fprintf(&b, "    %v upload diasend.xls\n", APP)
	fmt.Fprintf(&b, "    %v upload --dryrun diasend.xls\n", APP)
	fmt.Fprintf(&b, `    %v upload --credentials "credentials.json" --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"`, APP)
	fmt.Fprintln(&b)

	return b.String()
}

func (cmd *Upload) FlagSet(flagset *pflag.FlagSet) {
	cmd.flagset(flagset)

	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Prints the upload records without uploading them to Tidepool")
}

func (cmd *Upload) Execute(ctx context.Context, options *Options, args ...string) error {
	log := options.logger()

	conf, err := options.config()
	if err != nil {
		return err
	}

	workbook, err := cmd.open(ctx, args, log)
	if err != nil {
		return err
	}

	defer workbook.Close()

	meter, cgm, err := diasend.Extract(workbook, conf.DateFormat, log)
	if err != nil {
		return err
	}

	client, err := tidepool.NewClient(conf.APIURL, conf.UploadURL, tidepool.WithLogger(log))
	if err != nil {
		return err
	}

	if cmd.dryrun {
		return cmd.print(client, conf, meter, cgm)
	}

	results, err := cmd.upload(ctx, client, conf, meter, cgm, log)
	for _, result := range results {
		log.Info("summary",
			zap.Stringer("type", result.Kind),
			zap.String("upload_id", result.UploadID),
			zap.Int("uploaded", result.Uploaded),
			zap.Int("failed", result.Failed))
	}

	return err
}

// upload runs the login/upload/logout sequence: the CGM readings are uploaded first and then the meter
// readings, each as a separate upload batch. A failed upload batch aborts the sequence but the session
// is still logged out.
func (cmd *Upload) upload(ctx context.Context, client *tidepool.Client, conf *config.Config, meter, cgm []glucose.Reading, log *zap.Logger) ([]*tidepool.Result, error) {
	session, err := client.Login(ctx, conf.Email, conf.Password)
	if err != nil {
		return nil, err
	}

	logout := func() {
		if err := client.Logout(ctx, session); err != nil {
			log.Warn("logout failed", apperr.Fields(err)...)
		}
	}

	results := []*tidepool.Result{}
	for _, batch := range batches(conf, meter, cgm) {
		result, err := client.UploadBatch(ctx, session, batch.readings, batch.deviceID, batch.kind)
		if err != nil {
			logout()
			return results, err
		}

		results = append(results, result)
	}

	logout()

	failed := 0
	for _, result := range results {
		failed += result.Failed
	}

	if failed > 0 {
		log.Warn("some readings were not uploaded", zap.Int("failed", failed))
	}

	return results, nil
}

// print writes the upload records as JSON lines, without contacting Tidepool.
func (cmd *Upload) print(client *tidepool.Client, conf *config.Config, meter, cgm []glucose.Reading) error {
	encoder := json.NewEncoder(stdout(cmd.stdout))

	for _, batch := range batches(conf, meter, cgm) {
		if strings.TrimSpace(batch.deviceID) == "" {
			return apperr.NewConfigError("missing device ID for %v upload", batch.kind)
		}

		uploadID := client.UploadID(batch.deviceID)
		for _, reading := range batch.readings {
			if err := encoder.Encode(client.Payload(reading, batch.deviceID, batch.kind, uploadID)); err != nil {
				return err
			}
		}
	}

	return nil
}

type uploadBatch struct {
	readings []glucose.Reading
	deviceID string
	kind     glucose.Kind
}

// batches returns the upload batches in upload order i.e. CGM readings and then meter readings.
func batches(conf *config.Config, meter, cgm []glucose.Reading) []uploadBatch {
	return []uploadBatch{
		{cgm, conf.CGMDeviceID, glucose.CBG},
		{meter, conf.MeterDeviceID, glucose.SMBG},
	}
}

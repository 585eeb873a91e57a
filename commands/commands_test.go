package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestExtract(t *testing.T) {
	expected := `Type	Timestamp	Glucose	Units
smbg	01/03/2024 08:00	5.6	mmol/L
cbg	01/03/2024 08:05	5.8	mmol/L
cbg	01/03/2024 08:20	6.1	mmol/L
`

	workbook := diasendXLSX(t,
		[][]any{
			{"01/03/2024 08:00", 5.6},
		},
		[][]any{
			{"01/03/2024 08:05", 5.8},
			{"01/03/2024 08:20", 6.1},
		})

	file := filepath.Join(t.TempDir(), "tsv", "readings.tsv")
	cmd := Extract{
		file:   file,
		format: "%d/%m/%Y %H:%M",
	}

	if err := cmd.Execute(context.Background(), &Options{}, workbook); err != nil {
		t.Fatalf("Unexpected error extracting Diasend workbook (%v)", err)
	}

	tsv, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Unexpected error reading TSV file (%v)", err)
	}

	if string(tsv) != expected {
		t.Errorf("Incorrect TSV\n   expected: %s\n   got:      %s\n", expected, string(tsv))
	}
}

func TestExtractWithFileAndURL(t *testing.T) {
	cmd := Extract{
		command: command{url: "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"},
		file:    filepath.Join(t.TempDir(), "readings.tsv"),
		format:  "%d/%m/%Y %H:%M",
	}

	if err := cmd.Execute(context.Background(), &Options{}, "diasend.xls"); err == nil {
		t.Fatalf("Expected error for both Diasend file and spreadsheet URL")
	}
}

func TestGroups(t *testing.T) {
	expected := "u123                      root,upload\nu456                      view\n"

	server := tidepoolServer{}
	_, file := setup(t, &server)

	var b bytes.Buffer

	cmd := Groups{stdout: &b}
	if err := cmd.Execute(context.Background(), &Options{Config: file}); err != nil {
		t.Fatalf("Unexpected error retrieving groups (%v)", err)
	}

	if b.String() != expected {
		t.Errorf("Incorrect groups\n   expected: %q\n   got:      %q\n", expected, b.String())
	}

	calls := []string{
		"POST /auth/login",
		"GET /auth/login",
		"GET /access/groups/u123",
		"POST /auth/logout",
	}

	if requests := server.requests(); !reflect.DeepEqual(requests, calls) {
		t.Errorf("Incorrect Tidepool requests\n   expected: %v\n   got:      %v\n", calls, requests)
	}
}

func TestVersion(t *testing.T) {
	var b bytes.Buffer

	cmd := Version{stdout: &b}
	if err := cmd.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if b.String() != VERSION+"\n" {
		t.Errorf("Incorrect version - expected:%q, got:%q", VERSION+"\n", b.String())
	}
}

func TestSpreadsheetID(t *testing.T) {
	tests := map[string]string{
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms":             "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0": "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	}

	for url, expected := range tests {
		id, err := spreadsheetID(url)
		if err != nil {
			t.Fatalf("Unexpected error parsing spreadsheet URL %v (%v)", url, err)
		}

		if id != expected {
			t.Errorf("Incorrect spreadsheet ID for %v - expected:%v, got:%v", url, expected, id)
		}
	}

	if _, err := spreadsheetID("https://example.com/spreadsheets/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"); err == nil {
		t.Errorf("Expected error for invalid spreadsheet URL")
	}
}

func TestTokens(t *testing.T) {
	workdir := t.TempDir()
	file := tokens("/etc/diatide/.google/credentials.json", workdir)

	if expected := filepath.Join(workdir, ".google", "credentials.sheets"); file != expected {
		t.Errorf("Incorrect tokens file - expected:%v, got:%v", expected, file)
	}

	token := oauth2.Token{
		AccessToken:  "ya29.qwerty",
		TokenType:    "Bearer",
		RefreshToken: "1//uiop",
		Expiry:       time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
	}

	if err := saveToken(file, &token); err != nil {
		t.Fatalf("Unexpected error saving token (%v)", err)
	}

	saved, err := tokenFromFile(file)
	if err != nil {
		t.Fatalf("Unexpected error reading token (%v)", err)
	}

	if saved.AccessToken != token.AccessToken || saved.RefreshToken != token.RefreshToken || !saved.Expiry.Equal(token.Expiry) {
		t.Errorf("Incorrect token\n   expected: %+v\n   got:      %+v\n", token, *saved)
	}
}

func TestAuthorizeWithoutTokens(t *testing.T) {
	credentials := filepath.Join(t.TempDir(), "credentials.json")
	contents := `{"installed":{"client_id":"diatide.apps.googleusercontent.com","client_secret":"qwerty","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`

	if err := os.WriteFile(credentials, []byte(contents), 0600); err != nil {
		t.Fatalf("Unexpected error writing credentials file (%v)", err)
	}

	if _, err := authorize(context.Background(), credentials, SHEETS, filepath.Join(t.TempDir(), "credentials.sheets")); err == nil {
		t.Errorf("Expected error authorising without tokens")
	}
}

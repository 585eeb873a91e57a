package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	apperr "github.com/diatide/diatide/errors"
)

const example = `email: jane@example.com
password: secret
cgm_device_id: MyCGM-1234
bg_meter_device_id: MyMeter-5678
date_format: '%d/%m/%Y %H:%M'
`

func write(t *testing.T, contents string) string {
	file := filepath.Join(t.TempDir(), ".diatide.cfg")

	if err := os.WriteFile(file, []byte(contents), 0600); err != nil {
		t.Fatalf("Unexpected error writing configuration file (%v)", err)
	}

	return file
}

func TestLoad(t *testing.T) {
	expected := Config{
		Email:         "jane@example.com",
		Password:      "secret",
		CGMDeviceID:   "MyCGM-1234",
		MeterDeviceID: "MyMeter-5678",
		DateFormat:    "%d/%m/%Y %H:%M",
	}

	c, err := Load(write(t, example))
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	if !reflect.DeepEqual(*c, expected) {
		t.Errorf("Incorrect configuration\n   expected: %+v\n   got:      %+v\n", expected, *c)
	}
}

func TestLoadWithMissingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".diatide.cfg")

	if _, err := Load(file); !errors.Is(err, apperr.ErrConfig) {
		t.Fatalf("Expected configuration error for missing file, got %v", err)
	}

	bytes, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Expected template configuration file (%v)", err)
	}

	template := Config{}
	if err := yaml.Unmarshal(bytes, &template); err != nil {
		t.Fatalf("Invalid template configuration file (%v)", err)
	}

	if !reflect.DeepEqual(template, Defaults()) {
		t.Errorf("Incorrect template\n   expected: %+v\n   got:      %+v\n", Defaults(), template)
	}

	if _, err := Load(file); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("Expected configuration error for unedited template, got %v", err)
	}
}

func TestLoadWithRemnants(t *testing.T) {
	tests := []string{
		"email: example@example.com\npassword: secret\ncgm_device_id: MyCGM-1234\nbg_meter_device_id: MyMeter-5678\n",
		"email: jane@example.com\npassword: your_password_here\ncgm_device_id: MyCGM-1234\nbg_meter_device_id: MyMeter-5678\n",
		"email: jane@example.com\npassword: secret\ncgm_device_id: yourcgmdevicename\nbg_meter_device_id: MyMeter-5678\n",
		"email: jane@example.com\npassword: secret\ncgm_device_id: MyCGM-1234\nbg_meter_device_id: yourbgmetername\n",
	}

	for _, contents := range tests {
		if _, err := Load(write(t, contents)); !errors.Is(err, apperr.ErrConfig) {
			t.Errorf("Expected configuration error for unedited configuration\n%v\ngot %v", contents, err)
		}
	}
}

func TestLoadWithMissingDeviceID(t *testing.T) {
	contents := "email: jane@example.com\npassword: secret\ncgm_device_id: MyCGM-1234\n"

	if _, err := Load(write(t, contents)); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("Expected configuration error for missing meter device ID, got %v", err)
	}
}

func TestLoadWithDefaultDateFormat(t *testing.T) {
	contents := "email: jane@example.com\npassword: secret\ncgm_device_id: MyCGM-1234\nbg_meter_device_id: MyMeter-5678\n"

	c, err := Load(write(t, contents))
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	if c.DateFormat != "%d/%m/%Y %H:%M" {
		t.Errorf("Incorrect date format - expected:%v, got:%v", "%d/%m/%Y %H:%M", c.DateFormat)
	}
}

func TestLoadWithEnvironmentOverrides(t *testing.T) {
	t.Setenv("DIATIDE_PASSWORD", "s3cr3t")
	t.Setenv("DIATIDE_CGM_DEVICE_ID", "OtherCGM-9999")
	t.Setenv("DIATIDE_API_URL", "http://localhost:8009")

	c, err := Load(write(t, example))
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	if c.Password != "s3cr3t" {
		t.Errorf("Incorrect password - expected:%v, got:%v", "s3cr3t", c.Password)
	}

	if c.CGMDeviceID != "OtherCGM-9999" {
		t.Errorf("Incorrect CGM device ID - expected:%v, got:%v", "OtherCGM-9999", c.CGMDeviceID)
	}

	if c.APIURL != "http://localhost:8009" {
		t.Errorf("Incorrect API URL - expected:%v, got:%v", "http://localhost:8009", c.APIURL)
	}

	if c.Email != "jane@example.com" {
		t.Errorf("Incorrect email - expected:%v, got:%v", "jane@example.com", c.Email)
	}
}

func TestLoadWithInvalidYAML(t *testing.T) {
	if _, err := Load(write(t, "email: [jane")); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("Expected configuration error for invalid YAML, got %v", err)
	}
}

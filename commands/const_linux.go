package commands

const (
	_etc = "/usr/local/etc/diatide"
	_var = "/usr/local/var/diatide"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"

	OPEN = "xdg-open"
)

package commands

// macOS installs use the reverse-DNS application name.
const (
	_etc = "/usr/local/etc/com.github.diatide"
	_var = "/usr/local/var/com.github.diatide"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"

	OPEN = "open"
)

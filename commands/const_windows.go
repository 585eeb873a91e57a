package commands

const (
	_etc = `C:\ProgramData\diatide`
	_var = `C:\ProgramData\diatide`

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + `\.google\credentials.json`

	OPEN = "explorer"
)

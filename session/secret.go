package session

import (
	"os"
)

const (
	SecretEnvVar = "AUTH_SECRET"
)

// SecretFromEnv reads the signing secret from varname and removes it from
// the environment, so child processes and later env dumps do not see it.
//
// getfn/setfn default to os.Getenv/os.Setenv.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if err := setfn(varname, ""); err != nil {
		return nil, InvalidSecret{VarName: varname, cause: err}
	}
	if len(val) == 0 {
		return nil, InvalidSecret{VarName: varname, cause: ErrMissingSecret}
	}
	return []byte(val), nil
}

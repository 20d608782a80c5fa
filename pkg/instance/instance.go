package instance

import "github.com/angelmondragon/loanledger/pkg/env"

// GetID identifies the running process in logs. Explicit configuration wins
// over platform-provided names.
func GetID() string {
	for _, key := range []string{"LOANLEDGER_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := env.Get(key, ""); id != "" {
			return id
		}
	}
	return "local"
}

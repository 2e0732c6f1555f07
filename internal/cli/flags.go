package cli

import (
	"github.com/spf13/pflag"
)

// addUserFlags registers the --user and --out flags shared by commands
// that produce a chart.
func addUserFlags(fs *pflag.FlagSet, userID *int64, out *string, usage string) {
	fs.Int64Var(userID, "user", defaultUserID, usage)
	if out != nil {
		fs.StringVarP(out, "out", "o", "", "Write the chart PNG to this path")
	}
}

package cmdutil

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hdwx/mrms/pkg/constants"
)

// Context returns the command context bounded by the default command
// timeout.
func Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, constants.CommandTimeout)
}

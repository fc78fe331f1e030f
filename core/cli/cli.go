package cli

import (
	cliContext "github.com/mudler/thinkstream/core/cli/context"
)

var CLI struct {
	cliContext.Context `embed:""`

	Run      RunCMD      `cmd:"" help:"Run the thinkstream API server, this is the default command if no other command is specified. Run 'thinkstream run --help' for more information" default:"withargs"`
	Classify ClassifyCMD `cmd:"" help:"Classify model output line by line into reasoning and payload events"`
	Extract  ExtractCMD  `cmd:"" help:"Extract every reasoning block from a complete model output"`
	Formats  FormatsCMD  `cmd:"" help:"List the recognised reasoning formats"`
}

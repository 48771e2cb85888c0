package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for waybill
var RootCmd = &cobra.Command{
	Use:              "waybill",
	Short:            "Cross-faction document custody",
	TraverseChildren: true,
}

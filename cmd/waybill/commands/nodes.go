package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/waybill"
	"github.com/spf13/cobra"
)

//NewNodesCmd returns the command that manages the node registry
func NewNodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage the node registry (nodes.json)",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List the registered nodes",
		PreRunE: loadNodesConfig,
		RunE:    listNodes,
	}
	addCommonFlags(list)

	initCmd := &cobra.Command{
		Use:     "init",
		Short:   "Write the default nodes to nodes.json",
		PreRunE: loadNodesConfig,
		RunE:    initNodes,
	}
	addCommonFlags(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing nodes.json")

	cmd.AddCommand(list, initCmd)

	return cmd
}

func listNodes(cmd *cobra.Command, args []string) error {
	reg, err := waybill.LoadRegistry(_config.Waybill.DataDir, _config.Waybill.Logger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFACTION\tORGANIZATION\tNAME\tPORT")
	for _, n := range reg.Nodes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", n.ID, n.Faction, n.Organization, n.Name(), n.Port)
	}

	return w.Flush()
}

func initNodes(cmd *cobra.Command, args []string) error {
	store := registry.NewJSONRegistry(_config.Waybill.DataDir)

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(store.Path()); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", store.Path())
	}

	if err := os.MkdirAll(_config.Waybill.DataDir, 0755); err != nil {
		return err
	}

	if err := store.Write(registry.DefaultNodes()); err != nil {
		return err
	}

	fmt.Println("Wrote", store.Path())

	return nil
}

func loadNodesConfig(cmd *cobra.Command, args []string) error {
	return bindFlagsLoadViper(cmd)
}

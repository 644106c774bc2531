package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List collections under the store root",
		Run:   runStores,
	}
	cmd.Flags().Bool("cached", false, "Only collections with an open handle")

	RootCmd.AddCommand(cmd)
}

func runStores(cmd *cobra.Command, args []string) {
	cached, _ := cmd.Flags().GetBool("cached")

	svc, err := openService()
	if err != nil {
		exitErr("open service", err)
	}
	defer svc.Close()

	names, err := svc.ListStores(cached)
	if err != nil {
		exitErr("stores", err)
	}

	if names == nil {
		names = []string{}
	}
	b, _ := json.Marshal(names)
	fmt.Println(string(b))
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <uuid>",
		Short: "Delete a memory",
		Long:  "Delete a memory by uuid. Deleting an absent uuid succeeds.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	ok, err := st.DeleteMemory(cmd.Context(), args[0], true)
	if err != nil {
		exitErr("rm", err)
	}

	b, _ := json.Marshal(map[string]bool{"deleted": ok})
	fmt.Println(string(b))
}

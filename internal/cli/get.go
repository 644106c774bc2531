package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentutil/memstore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <uuid>",
		Short: "Retrieve a memory by uuid",
		Long:  "Retrieve one memory by its uuid. Counts as an access: the record's access statistics are updated.",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	mem, err := st.GetMemory(cmd.Context(), args[0], true)
	if err != nil {
		exitErr("get", err)
	}
	if mem == nil {
		exitErr("get", fmt.Errorf("%w: %s", store.ErrNotFound, args[0]))
	}

	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}

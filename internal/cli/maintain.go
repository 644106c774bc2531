package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old, unimportant, rarely accessed memories",
		Run:   runCleanup,
	}
	cleanupCmd.Flags().Int64P("days", "d", 30, "Only memories older than this many days")
	cleanupCmd.Flags().Uint64("min-importance", 5, "Only memories below this importance")
	cleanupCmd.Flags().Uint64("max-access", 5, "Only memories accessed fewer times than this")
	RootCmd.AddCommand(cleanupCmd)

	consolidateCmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Report pairs of near-duplicate memories",
		Run:   runConsolidate,
	}
	consolidateCmd.Flags().Float64("threshold", 0.8, "Token similarity threshold (0-1)")
	RootCmd.AddCommand(consolidateCmd)
}

func runCleanup(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt64("days")
	minImportance, _ := cmd.Flags().GetUint64("min-importance")
	maxAccess, _ := cmd.Flags().GetUint64("max-access")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	removed, err := st.CleanupOldMemories(cmd.Context(), days, minImportance, maxAccess, true)
	if err != nil {
		exitErr("cleanup", err)
	}

	if removed == nil {
		removed = []string{}
	}
	b, _ := json.Marshal(map[string]interface{}{"removed": removed})
	fmt.Println(string(b))
}

func runConsolidate(cmd *cobra.Command, args []string) {
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	pairs, err := st.ConsolidateMemories(cmd.Context(), threshold)
	if err != nil {
		exitErr("consolidate", err)
	}

	if pairs == nil {
		pairs = [][2]string{}
	}
	b, _ := json.MarshalIndent(pairs, "", "  ")
	fmt.Println(string(b))
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Run:   runStats,
	}
	statsCmd.Flags().Bool("text", false, "Plain text instead of JSON")
	RootCmd.AddCommand(statsCmd)

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Count memories in the collection",
		Run:   runCount,
	}
	RootCmd.AddCommand(countCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	text, _ := cmd.Flags().GetBool("text")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if text {
		fmt.Println(stats.String())
		return
	}
	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}

func runCount(cmd *cobra.Command, args []string) {
	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	n, err := st.CountMemories(cmd.Context())
	if err != nil {
		exitErr("count", err)
	}
	fmt.Println(n)
}

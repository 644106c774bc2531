package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	importantCmd := &cobra.Command{
		Use:   "important",
		Short: "List memories at or above a minimum importance",
		Run:   runImportant,
	}
	importantCmd.Flags().Uint64P("min", "m", 0, "Minimum importance")
	importantCmd.Flags().IntP("top", "k", 10, "Max results")
	RootCmd.AddCommand(importantCmd)

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List memories created within the last N days",
		Run:   runRecent,
	}
	recentCmd.Flags().Int64P("days", "d", 7, "Look-back window in days")
	recentCmd.Flags().IntP("top", "k", 10, "Max results")
	RootCmd.AddCommand(recentCmd)

	frequentCmd := &cobra.Command{
		Use:   "frequent",
		Short: "List memories by access count",
		Run:   runFrequent,
	}
	frequentCmd.Flags().IntP("top", "k", 10, "Max results")
	RootCmd.AddCommand(frequentCmd)

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "List every memory in the collection",
		Run:   runAll,
	}
	RootCmd.AddCommand(allCmd)
}

func runImportant(cmd *cobra.Command, args []string) {
	min, _ := cmd.Flags().GetUint64("min")
	topK, _ := cmd.Flags().GetInt("top")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.MemoriesByImportance(cmd.Context(), min, topK)
	if err != nil {
		exitErr("important", err)
	}
	printMemories(results)
}

func runRecent(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt64("days")
	topK, _ := cmd.Flags().GetInt("top")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.RecentMemories(cmd.Context(), days, topK)
	if err != nil {
		exitErr("recent", err)
	}
	printMemories(results)
}

func runFrequent(cmd *cobra.Command, args []string) {
	topK, _ := cmd.Flags().GetInt("top")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.FrequentlyAccessed(cmd.Context(), topK)
	if err != nil {
		exitErr("frequent", err)
	}
	printMemories(results)
}

func runAll(cmd *cobra.Command, args []string) {
	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.AllMemories(cmd.Context())
	if err != nil {
		exitErr("all", err)
	}
	printMemories(results)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags <tag,...>",
		Short: "Find memories carrying any of the given tags",
		Args:  cobra.ExactArgs(1),
		Run:   runTags,
	}

	cmd.Flags().IntP("top", "k", 10, "Max results")

	RootCmd.AddCommand(cmd)
}

func runTags(cmd *cobra.Command, args []string) {
	topK, _ := cmd.Flags().GetInt("top")

	tags := splitTags(args[0])
	if len(tags) == 0 {
		exitErr("tags", fmt.Errorf("at least one tag is required"))
	}

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.SearchByTags(cmd.Context(), tags, topK)
	if err != nil {
		exitErr("tags", err)
	}

	printMemories(results)
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over content and tags",
		Long:  "Search with FTS5 syntax: bare terms, AND/OR/NOT, \"quoted phrases\". --boost blends in importance, recency, and access frequency.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("top", "k", 10, "Max results")
	cmd.Flags().Bool("boost", false, "Re-rank by combined relevance score")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	topK, _ := cmd.Flags().GetInt("top")
	boost, _ := cmd.Flags().GetBool("boost")

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	results, err := st.SearchMemories(cmd.Context(), strings.Join(args, " "), topK, boost)
	if err != nil {
		exitErr("search", err)
	}

	printMemories(results)
}

func printMemories(results interface{}) {
	b, _ := json.MarshalIndent(results, "", "  ")
	if string(b) == "null" {
		fmt.Println("[]")
		return
	}
	fmt.Println(string(b))
}

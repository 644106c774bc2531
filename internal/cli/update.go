package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentutil/memstore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <uuid>",
		Short: "Update a memory's content, importance, or tags",
		Long:  "Update only the fields given as flags; the rest stay as they are. Tags are replaced as a whole.",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().String("content", "", "New content")
	cmd.Flags().Uint64P("importance", "i", 0, "New importance score (0-100)")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated replacement tags (empty clears)")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	var p store.UpdateParams
	if cmd.Flags().Changed("content") {
		content, _ := cmd.Flags().GetString("content")
		p.Content = &content
	}
	if cmd.Flags().Changed("importance") {
		importance, _ := cmd.Flags().GetUint64("importance")
		p.Importance = &importance
	}
	if cmd.Flags().Changed("tags") {
		tagsStr, _ := cmd.Flags().GetString("tags")
		tags := splitTags(tagsStr)
		if tags == nil {
			tags = []string{}
		}
		p.Tags = tags
	}

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	changed, err := st.UpdateMemory(cmd.Context(), args[0], p, true)
	if err != nil {
		exitErr("update", err)
	}

	b, _ := json.Marshal(map[string]bool{"updated": changed})
	fmt.Println(string(b))
}

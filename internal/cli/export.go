package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentutil/memstore/internal/memory"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSONL on stdout",
		Run:   runExport,
	}
	RootCmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import JSONL records from stdin",
		Long:  "Import records produced by export. Records keep their uuid, timestamps, and counters; existing records with the same uuid are replaced.",
		Run:   runImport,
	}
	RootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	memories, err := st.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	enc := json.NewEncoder(w)
	for _, mem := range memories {
		if err := enc.Encode(mem); err != nil {
			exitErr("export", err)
		}
	}
}

func runImport(cmd *cobra.Command, args []string) {
	var memories []memory.Memory
	dec := json.NewDecoder(bufio.NewReader(os.Stdin))
	for dec.More() {
		var mem memory.Memory
		if err := dec.Decode(&mem); err != nil {
			exitErr("parse import", err)
		}
		memories = append(memories, mem)
	}

	svc, st, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer svc.Close()

	n, err := st.Import(cmd.Context(), memories, true)
	if err != nil {
		exitErr("import", err)
	}

	b, _ := json.Marshal(map[string]int{"imported": n})
	fmt.Println(string(b))
}

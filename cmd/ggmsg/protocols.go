package main

import (
	"fmt"
	"io"

	"github.com/example/go-ggwave-message/internal/protocol"
	"github.com/spf13/cobra"
)

func newProtocolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "List available ggwave transmission protocols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printProtocols(cmd.OutOrStdout())
		},
	}

	return cmd
}

func printProtocols(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Available ggwave protocols:"); err != nil {
		return err
	}

	for _, p := range protocol.All() {
		marker := ""
		if p.ID == protocol.DefaultID {
			marker = " (DEFAULT)"
		}
		if _, err := fmt.Fprintf(w, "  %2d: %-22s %s%s\n", p.ID, p.Name, p.Desc, marker); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nUsage examples:\n  ggmsg send \"hello\" --protocol 1\n  ggmsg send --input message.txt -p 8 -o out.wav\n")
	return err
}

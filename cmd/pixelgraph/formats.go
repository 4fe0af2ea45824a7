package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/format"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported pack formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEDITION\tTEXTURES")
		for _, name := range format.Names() {
			edition, err := format.Edition(name)
			if err != nil {
				return err
			}
			enc, err := format.New(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, edition, joinTags(enc.Tags()))
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println("pixelgraph", version)
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd, versionCmd)
}

func joinTags(tags []encoding.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

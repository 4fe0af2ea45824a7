package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pixelgraph/internal/config"
	"pixelgraph/internal/format"
	"pixelgraph/internal/importer"
	"pixelgraph/internal/logger"
	"pixelgraph/internal/packio"
)

var importCmd = &cobra.Command{
	Use:   "import <pack>",
	Short: "Import a published resource pack into the project",
	Long: `Import reads a resource pack directory or .zip archive, decodes its
texture sets from the given format and writes them into the project as local
materials in the project's input format.

Examples:
  pixelgraph import MyPack.zip --from lab-1.3 --project ./mypack
  pixelgraph import ./pack --from old-pbr --to raw`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("from", format.Lab13, "Format the pack was published in")
	importCmd.Flags().String("to", "", "Project format (default: project input format)")

	bindFlags(importCmd, false, []flagBinding{
		{"import.from", "from"},
		{"import.to", "to"},
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadProject(config.Flags{InputFormat: viper.GetString("import.to")})
	if err != nil {
		return err
	}
	log := logger.Named("import")

	source, err := format.New(viper.GetString("import.from"))
	if err != nil {
		return fmt.Errorf("source format: %w", err)
	}
	target, err := format.New(cfg.Input.Format)
	if err != nil {
		return fmt.Errorf("project format: %w", err)
	}

	reader, closeReader, err := openReader(args[0])
	if err != nil {
		return err
	}
	defer closeLogged(log, "reader", closeReader)

	start := time.Now()
	im := importer.New(importer.Options{
		Reader:  reader,
		Writer:  packio.NewDirWriter(viper.GetString("project")),
		Source:  source,
		Target:  target,
		Workers: cfg.Workers,
		Logger:  log,
	})
	sum, err := im.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d materials, copied %d files in %v\n",
		sum.Materials, sum.Copied, time.Since(start).Round(time.Millisecond))
	if sum.Failed > 0 {
		for _, e := range sum.Errors {
			fmt.Printf("  FAIL %v\n", e)
		}
		return errors.New("some texture sets failed to import")
	}
	return nil
}

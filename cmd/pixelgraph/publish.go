package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pixelgraph/internal/config"
	"pixelgraph/internal/format"
	"pixelgraph/internal/logger"
	"pixelgraph/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the project as a resource pack",
	Long: `Publish builds every material of the project in the profile's output
format and copies the remaining pack files. Outputs newer than their sources
and the project file are skipped.

Examples:
  pixelgraph publish --project ./mypack
  pixelgraph publish --profile rtx --output dist/rtx.zip
  pixelgraph publish --format lab-1.3 --input-format raw --clean`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("profile", "", "Profile to publish (default: first profile)")
	publishCmd.Flags().String("output", "", "Output directory or .zip archive")
	publishCmd.Flags().String("format", "", "Override the profile's output format")
	publishCmd.Flags().String("input-format", "", "Override the project's input format")
	publishCmd.Flags().Bool("clean", false, "Remove previous output before publishing")

	bindFlags(publishCmd, false, []flagBinding{
		{"publish.profile", "profile"},
		{"publish.output", "output"},
		{"publish.format", "format"},
		{"publish.input_format", "input-format"},
		{"publish.clean", "clean"},
	})
}

func runPublish(cmd *cobra.Command, _ []string) error {
	flags := config.Flags{
		Profile:     viper.GetString("publish.profile"),
		Output:      viper.GetString("publish.output"),
		Format:      viper.GetString("publish.format"),
		InputFormat: viper.GetString("publish.input_format"),
		Clean:       viper.GetBool("publish.clean"),
	}
	cfg, cfgPath, err := loadProject(flags)
	if err != nil {
		return err
	}
	log := logger.Named("publish")

	profile, err := cfg.Profile(flags.Profile)
	if err != nil {
		return err
	}
	input, err := format.New(cfg.Input.Format)
	if err != nil {
		return fmt.Errorf("input format: %w", err)
	}
	output, err := profile.OutputEncoding()
	if err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	graphProfile, err := profile.GraphProfile(0)
	if err != nil {
		return err
	}

	var profileTime time.Time
	exclude := []string{config.ProjectFile}
	if cfgPath != "" {
		if info, err := os.Stat(cfgPath); err == nil {
			profileTime = info.ModTime()
		}
		exclude = append(exclude, filepath.Base(cfgPath))
	}

	projectDir, _ := filepath.Abs(viper.GetString("project"))
	for _, p := range cfg.Profiles {
		if rel, err := filepath.Rel(projectDir, p.Output); err == nil && filepath.IsLocal(rel) {
			exclude = append(exclude, filepath.ToSlash(rel))
		}
	}
	reader, closeReader, err := openReader(projectDir)
	if err != nil {
		return err
	}
	defer closeLogged(log, "reader", closeReader)
	writer := openWriter(profile.Output)

	fmt.Printf("Publishing %s: %s -> %s (%s)\n", cfg.Name, cfg.Input.Format, profile.Format, profile.Output)

	pub := publish.New(publish.Options{
		Reader:          reader,
		Writer:          writer,
		Input:           input,
		Output:          output,
		Profile:         graphProfile,
		ProfileTime:     profileTime,
		OutputLocal:     profile.LocalOutput,
		AutoMaterial:    cfg.Input.AutoMaterial,
		Clean:           profile.Clean,
		ImageExtensions: profile.ImageExtensions,
		IgnorePaths:     profile.IgnorePaths,
		Exclude:         exclude,
		GameVersion:     profile.GameVersion,
		Description:     cfg.Description,
		Tags:            cfg.Tags,
		ManifestPath:    profile.Manifest,
		Workers:         cfg.Workers,
		Logger:          log,
	})
	sum, runErr := pub.Run(cmd.Context())
	var closeErr error
	if runErr == nil {
		// A canceled run leaves a previous archive in place.
		closeErr = writer.Close()
	}

	if sum != nil {
		fmt.Printf("\nDone in %v: %d published, %d up-to-date, %d copied, %d failed",
			sum.Elapsed.Round(time.Millisecond), sum.Published, sum.UpToDate, sum.Copied, sum.Failed)
		if sum.Canceled > 0 {
			fmt.Printf(", %d canceled", sum.Canceled)
		}
		fmt.Println()
		for _, r := range sum.Results {
			if r.State == publish.Failed {
				fmt.Printf("  FAIL %s: %s\n", r.Name, r.Error)
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing output: %w", closeErr)
	}
	if sum.Failed > 0 {
		return errors.New("some materials failed to publish")
	}
	return nil
}

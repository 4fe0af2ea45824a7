// Command pixelgraph publishes PBR resource packs from texture projects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pixelgraph/internal/config"
	"pixelgraph/internal/logger"
	"pixelgraph/internal/packio"
)

var rootCmd = &cobra.Command{
	Use:           "pixelgraph",
	Short:         "Convert Minecraft PBR texture sets between encodings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("project", ".", "Project directory")
	rootCmd.PersistentFlags().String("config", "", "Path to the project file (default: <project>/project.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this rotating file")
	rootCmd.PersistentFlags().Int("workers", 0, "Materials built concurrently (default: NumCPU)")

	bindFlags(rootCmd, true, []flagBinding{
		{"project", "project"},
		{"config", "config"},
		{"log.level", "log-level"},
		{"log.file", "log-file"},
		{"workers", "workers"},
	})
	viper.SetEnvPrefix("PIXELGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

type flagBinding struct {
	key  string
	flag string
}

func bindFlags(cmd *cobra.Command, persistent bool, bindings []flagBinding) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for _, bf := range bindings {
		if err := viper.BindPFlag(bf.key, flags.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadProject reads the project configuration and applies flag overrides.
func loadProject(flags config.Flags) (*config.Config, string, error) {
	projectDir, err := filepath.Abs(viper.GetString("project"))
	if err != nil {
		return nil, "", err
	}
	cfg, cfgPath, err := config.Load(projectDir, viper.GetString("config"))
	if err != nil {
		return nil, "", err
	}

	flags.Workers = viper.GetInt("workers")
	flags.LogLevel = viper.GetString("log.level")
	flags.LogFile = viper.GetString("log.file")
	if err := cfg.Resolve(projectDir, flags); err != nil {
		return nil, "", err
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileConfig(cfg.Logging.LogFile), true); err != nil {
		return nil, "", err
	}
	return cfg, cfgPath, nil
}

func fileConfig(path string) logger.FileConfig {
	if path == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(path)
}

func isArchive(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".zip")
}

// openReader opens a directory or a zip archive for reading.
func openReader(p string) (packio.Reader, func() error, error) {
	if isArchive(p) {
		zr, err := packio.OpenZipReader(p)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is neither a directory nor a zip archive", p)
	}
	return packio.NewDirReader(p), func() error { return nil }, nil
}

// closeLogged runs closeFn and logs a failure as a warning.
func closeLogged(log *zap.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn("closing "+what, zap.Error(err))
	}
}

// openWriter creates a directory or zip archive writer.
func openWriter(p string) packio.Writer {
	if isArchive(p) {
		return packio.NewZipWriter(p)
	}
	return packio.NewDirWriter(p)
}

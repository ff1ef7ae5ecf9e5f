package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	clog "github.com/charmbracelet/log"
	"github.com/jmcampanini/jh/internal/config"
	"github.com/jmcampanini/jh/internal/git"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print current configuration in TOML format",
	Long: `Print the current effective configuration in TOML format.

This outputs the merged configuration (defaults with any user overrides applied).
The output can be redirected to a file to create a new configuration:

  jh config > jh.toml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	return writeConfig(cmd, env.cfg, env.sources)
}

func writeConfig(cmd *cobra.Command, cfg config.Config, sources []string) error {
	var buf bytes.Buffer
	for _, path := range sources {
		buf.WriteString("# loaded from " + path + "\n")
	}
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err := fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return err
}

// env is what every command resolves from the process environment before it runs.
type env struct {
	cfg     config.Config
	cwd     string
	gitErr  error // set when git itself is unavailable
	inRepo  bool
	sources []string
}

// loadEnv discovers and loads configuration. It works outside a git
// repository too, so login and status can run anywhere.
func loadEnv() (env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return env{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return env{}, fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Discovery runs with the default timeout; the configured one applies afterwards
	return discoverEnv(git.New(false, cwd, config.DefaultConfig().Git.Timeout), cwd, homeDir)
}

// discoverEnv resolves the repository around cwd and loads every config file that applies.
// A missing git binary is treated like running outside a repository.
func discoverEnv(gitClient git.Git, cwd, homeDir string) (env, error) {
	worktreeRoot, err := gitClient.GetWorktreeRoot()
	var gitErr error
	if errors.Is(err, git.ErrNotInstalled) {
		clog.Debug("git unavailable, continuing outside a repository", "error", err)
		gitErr = err
	} else if err != nil {
		return env{}, fmt.Errorf("git error: %w", err)
	}

	var mainWorktreePath string
	if worktreeRoot != "" {
		mainWorktreePath, err = gitClient.GetMainWorktreePath()
		if err != nil {
			return env{}, fmt.Errorf("failed to get main worktree path: %w", err)
		}
	}

	configPaths := config.ConfigPaths(cwd, worktreeRoot, mainWorktreePath, homeDir)
	loader := config.NewDefaultLoader()
	loadResult, err := loader.LoadExplicit(configPaths, configFileFlag)
	if err != nil {
		return env{}, fmt.Errorf("failed to load config: %w", err)
	}

	return env{
		cfg:     loadResult.Config,
		cwd:     cwd,
		gitErr:  gitErr,
		inRepo:  worktreeRoot != "",
		sources: loadResult.SourcePaths,
	}, nil
}

// Command mdpplayground runs random policies on toy environments and
// saves the returns and episode lengths they reach
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/mdpplayground/environment/envconfig"
	"github.com/samuelfneumann/mdpplayground/experiment"
	"github.com/samuelfneumann/mdpplayground/experiment/tracker"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"github.com/samuelfneumann/mdpplayground/utils/progressbar"
	"gonum.org/v1/gonum/stat"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mdpplayground",
	Short: "Toy environments with controllable difficulty",
	Long: `mdpplayground synthesizes toy Markov decision processes whose
difficulty is set by meta-parameters such as reward delay, reward
sparsity, rewardable sequence length, noise, and irrelevant
dimensions.`,
	SilenceUsage: true,
}

// ============================================================================
// Run Command
// ============================================================================

var (
	runPreset     string
	runConfig     string
	runSteps      uint
	runSeed       int64
	runPolicySeed int64
	runLogLevel   string
	runOut        string
	runNoColor    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a random policy on a toy environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		au := aurora.NewAurora(!runNoColor)

		logger, err := newLogger(runLogLevel)
		if err != nil {
			return err
		}

		envConf, err := loadEnvConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(runOut, 0o755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}
		returns := tracker.NewReturn(filepath.Join(runOut, "return.bin"))
		lengths := tracker.NewEpisodeLength(filepath.Join(runOut,
			"episode_length.bin"))

		bar := progressbar.New(os.Stdout, 40, int(runSteps), !runNoColor)
		progress := &progressTracker{bar: bar, returns: returns}

		c := experiment.Config{
			Type:     experiment.OnlineExp,
			MaxSteps: runSteps,
			EnvConf:  envConf,
		}
		if runPolicySeed >= 0 {
			seed := uint64(runPolicySeed)
			c.PolicySeed = &seed
		}
		exp, err := c.CreateExp(logger, returns, lengths, progress)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
			syscall.SIGTERM)
		defer stop()

		runErr := exp.Run(ctx)
		bar.Close()
		if err := exp.Save(); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}

		finished := returns.Returns()
		fmt.Printf("%v episodes finished, mean return %v\n",
			au.Bold(len(finished)), au.Green(fmt.Sprintf("%.4f",
				mean(finished))))
		fmt.Printf("data saved to %v\n", au.Cyan(runOut))
		return nil
	},
}

// ============================================================================
// Presets Command
// ============================================================================

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "Print the configuration of presets as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := envconfig.Presets()
		if len(args) == 1 {
			names = []envconfig.PresetName{envconfig.PresetName(args[0])}
		}

		for _, name := range names {
			c, err := envconfig.NewConfig(name, 0)
			if err != nil {
				return err
			}
			if err := c.Save(os.Stdout); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runPreset, "preset", "p",
		string(envconfig.Discrete), "Environment preset")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "",
		"JSON environment configuration file, overrides --preset")
	runCmd.Flags().UintVarP(&runSteps, "steps", "n", 10_000,
		"Number of timesteps to run")
	runCmd.Flags().Int64VarP(&runSeed, "seed", "s", -1,
		"Seed of the environment, overrides the configured seed if "+
			"non-negative")
	runCmd.Flags().Int64Var(&runPolicySeed, "policy-seed", -1,
		"Seed of the random policy if non-negative, otherwise the action "+
			"space seed derived from the environment seed is used")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", ".",
		"Directory to save data to")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(presetsCmd)
}

// loadEnvConfig returns the environment configuration given by the
// flags of the run command
func loadEnvConfig() (envconfig.Config, error) {
	var c envconfig.Config
	var err error
	if runConfig != "" {
		var file *os.File
		file, err = os.Open(runConfig)
		if err != nil {
			return envconfig.Config{}, fmt.Errorf("could not open "+
				"configuration: %w", err)
		}
		defer file.Close()
		c, err = envconfig.Load(file)
	} else {
		c, err = envconfig.NewConfig(envconfig.PresetName(runPreset), 0)
	}
	if err != nil {
		return envconfig.Config{}, err
	}

	if runSeed >= 0 {
		c.Env.Seed = uint64(runSeed)
		c.Env.Seeds = nil
	}
	return c, nil
}

// newLogger returns a logger writing text to stderr at the given level
func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: l,
	})
	return slog.New(handler), nil
}

// progressTracker displays experiment progress, along with the return
// of the last finished episode
type progressTracker struct {
	bar     *progressbar.ProgressBar
	returns *tracker.Return
	steps   int
}

func (p *progressTracker) Track(step ts.TimeStep) {
	if step.First() {
		return
	}
	p.bar.Increment()
	p.steps++

	if p.steps%100 == 0 || step.Last() {
		status := ""
		if finished := p.returns.Returns(); len(finished) > 0 {
			status = fmt.Sprintf("episodes: %d | last return: %.3f",
				len(finished), finished[len(finished)-1])
		}
		p.bar.Display(status)
	}
}

func (p *progressTracker) Save() error {
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

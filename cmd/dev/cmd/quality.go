package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

const gotestsum = "gotest.tools/gotestsum@v1.12.0"

// integrationPackages hold the tests built with the integration tag.
var integrationPackages = []string{"./board/..."}

// gotestsumArgs builds the gotestsum invocation; goTestArgs are passed through to go test.
func gotestsumArgs(goTestArgs ...string) []string {
	args := []string{"run", gotestsum, "--no-summary=skipped", "--junitfile", "./coverage.xml", "--format", "short", "--"}
	return append(args, goTestArgs...)
}

func runGo(env []string, args []string) error {
	slog.Info("running go", "args", args)
	c := exec.Command("go", args...)
	c.Env = append(os.Environ(), env...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func TestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run unit tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			race, _ := cmd.Flags().GetBool("race")
			var err error
			if race {
				// the driver, the simulator and the gobot bus all share state behind mutexes
				err = runGo(nil, gotestsumArgs("-race", "./..."))
			} else {
				err = test.Test()
			}
			if err != nil {
				return fmt.Errorf("failed to run tests: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Bool("race", true, "run tests with the race detector")
	return cmd
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := test.Lint(); err != nil {
				return fmt.Errorf("failed to run linting: %w", err)
			}
			return nil
		},
	}
}

// IntegrationTestCmd runs the tests that need a DS1803 on a real bus.
func IntegrationTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run hardware integration tests against a DS1803",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _ := cmd.Flags().GetString("config")
			env := []string{"TEST_INTEGRATION_ENABLED=1"}
			if config != "" {
				env = append(env, "DIGIPOT_CONFIG="+config)
			}
			if os.Getenv("DIGIPOT_CONFIG") == "" && config == "" {
				slog.Warn("DIGIPOT_CONFIG is not set, hardware tests will be skipped")
			}
			goTestArgs := append([]string{"-tags", "integration", "-count=1"}, integrationPackages...)
			if err := runGo(env, gotestsumArgs(goTestArgs...)); err != nil {
				return fmt.Errorf("failed to run integration testing: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "board configuration file passed to the tests as DIGIPOT_CONFIG")
	return cmd
}

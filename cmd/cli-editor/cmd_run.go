package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aaveggupta/cli-ai-code-editor/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runRepo   string
	runPrompt string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run [instruction]",
	Short: "Execute an instruction against a repository",
	Long: `Scans the repository, selects the relevant files, asks the oracle for
whole-file edits, journals them and writes them to disk.

The instruction comes from --prompt, the arguments, or stdin when neither is
given.`,
	RunE: runInstruction,
}

func init() {
	runCmd.Flags().StringVarP(&runRepo, "repo", "r", "", "Target repository (default cli.default_repo)")
	runCmd.Flags().StringVarP(&runPrompt, "prompt", "p", "", "Instruction to execute")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", formatText, "Output format: text, json or yaml")
}

func runInstruction(cmd *cobra.Command, args []string) error {
	if err := checkFormat(runOutput); err != nil {
		return err
	}

	instruction := runPrompt
	if instruction == "" {
		instruction = strings.Join(args, " ")
	}
	if instruction == "" {
		var err error
		if instruction, err = readInstruction(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return fmt.Errorf("instruction is required")
	}

	target := runRepo
	if target == "" {
		target = cfg.CLI.DefaultRepo
	}

	a, err := newApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := repo.Resolve(a.fs, target)
	if err != nil {
		return err
	}

	logger.Debug("running instruction", zap.String("repo", path), zap.String("user_id", userID))
	res := a.executor.Execute(cmd.Context(), userID, instruction, path)
	if err := render(cmd.OutOrStdout(), runOutput, res, func(w io.Writer) { writeResult(w, res) }); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("execution failed with %d error(s)", len(res.Errors))
	}
	return nil
}

// readInstruction reads one instruction from r. An interactive caller sees a
// prompt on w; input ends at the first empty line or EOF.
func readInstruction(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "What would you like to change? (finish with an empty line)\n> ")
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading instruction: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

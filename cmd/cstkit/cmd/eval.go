package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/pipeline"
	"github.com/msto63/cstkit/internal/render"
	"github.com/msto63/cstkit/internal/server"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

var (
	evalEntry   string
	evalOutput  string
	evalHistory bool
	evalTree    bool
	evalRemote  string
	evalTimeout time.Duration
)

var evalCmd = &cobra.Command{
	Use:   "eval [text]",
	Short: "Evaluate an expression",
	Long: `Tokenizes, parses and evaluates one expression.

Examples:
  cstkit eval "one plus two"
  cstkit eval --entry multiplicationExpression "two times three"
  cstkit eval --output json --tree "four plus three plus one"
  echo "ten over two" | cstkit eval
  cstkit eval --remote 127.0.0.1:9310 "one plus one"`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalEntry, "entry", "e", "", "entry rule (default from config)")
	evalCmd.Flags().StringVarP(&evalOutput, "output", "o", "text", "output format: text or json")
	evalCmd.Flags().BoolVar(&evalHistory, "history", false, "record the run in the history store")
	evalCmd.Flags().BoolVarP(&evalTree, "tree", "t", false, "include the syntax tree")
	evalCmd.Flags().StringVar(&evalRemote, "remote", "", "evaluate on a cstkit server at this address")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 10*time.Second, "timeout for the run")
}

// evalResult is the JSON shape of an evaluation
type evalResult struct {
	RunID     string             `json:"run_id,omitempty"`
	Input     string             `json:"input"`
	EntryRule string             `json:"entry_rule,omitempty"`
	Value     *float64           `json:"value,omitempty"`
	Error     string             `json:"error,omitempty"`
	ErrorCode string             `json:"error_code,omitempty"`
	TimingsMs map[string]float64 `json:"timings_ms,omitempty"`
	Tree      *cst.Node          `json:"tree,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	if evalOutput != "text" && evalOutput != "json" {
		return ckerror.Newf(ckerror.CodeInvalidInput, "unknown output format %q", evalOutput)
	}
	text, err := inputText(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), evalTimeout)
	defer cancel()

	if evalRemote != "" {
		return evalOnServer(ctx, text)
	}

	e, err := setup()
	if err != nil {
		return err
	}

	res, runErr := e.pipeline.RunFrom(ctx, text, evalEntry)

	store, err := e.openHistory(evalHistory)
	if err != nil {
		e.logger.WarnWithErr("History store unavailable", err)
	} else if store != nil {
		defer store.Close()
		if recErr := store.Record(ctx, history.FromResult(res, runErr)); recErr != nil {
			e.logger.WarnWithErr("Failed to record evaluation", recErr)
		}
	}

	if evalOutput == "json" {
		if err := printJSON(toEvalResult(res, runErr)); err != nil {
			return err
		}
		return runErr
	}
	if runErr != nil {
		return runErr
	}
	if evalTree {
		fmt.Println(render.Tree(res.Tree))
	}
	fmt.Println(render.Value(res.Value))
	return nil
}

func toEvalResult(res *pipeline.Result, err error) evalResult {
	out := evalResult{RunID: res.RunID, Input: res.Input, EntryRule: res.EntryRule}
	if err != nil {
		out.Error = err.Error()
		out.ErrorCode = string(ckerror.GetCode(err))
		return out
	}
	value := res.Value
	out.Value = &value
	out.TimingsMs = map[string]float64{
		"tokenize": float64(res.Timings.Tokenize.Nanoseconds()) / 1e6,
		"parse":    float64(res.Timings.Parse.Nanoseconds()) / 1e6,
		"visit":    float64(res.Timings.Visit.Nanoseconds()) / 1e6,
	}
	if evalTree {
		out.Tree = res.Tree
	}
	return out
}

func evalOnServer(ctx context.Context, text string) error {
	client, err := server.Dial(evalRemote)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Evaluate(ctx, text, evalEntry, evalTree)
	if evalOutput == "json" {
		out := evalResult{Input: text, EntryRule: evalEntry}
		if err != nil {
			out.Error, out.ErrorCode = err.Error(), string(ckerror.GetCode(err))
		} else {
			out.RunID, out.EntryRule, out.Value = res.RunID, res.EntryRule, &res.Value
		}
		if printErr := printJSON(out); printErr != nil {
			return printErr
		}
		return err
	}
	if err != nil {
		return err
	}
	if evalTree {
		fmt.Println(res.Tree)
	}
	fmt.Println(render.Value(res.Value))
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.Marshal(v, json.Deterministic(true), jsontext.Multiline(true), jsontext.WithIndent("  "))
	if err != nil {
		return ckerror.Wrap(err, "encode output").WithCode(ckerror.CodeInternal)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

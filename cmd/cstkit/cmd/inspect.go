package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/render"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

var (
	treeEntry  string
	treeFormat string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [text]",
	Short: "Show the token stream",
	Long: `Runs the lexer only and lists every token with its kind,
image, position and categories. Whitespace is not part of the stream.

Examples:
  cstkit tokens "one plus 2"`,
	RunE: runTokens,
}

var treeCmd = &cobra.Command{
	Use:   "tree [text]",
	Short: "Show the concrete syntax tree",
	Long: `Tokenizes and parses without evaluating and prints the tree.

Formats:
  tree   - labeled tree (default)
  sexpr  - one-line s-expression
  json   - indented JSON

Examples:
  cstkit tree "one plus two times three"
  cstkit tree --format json --entry atomicExpression "(one)"`,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVarP(&treeEntry, "entry", "e", "", "entry rule (default from config)")
	treeCmd.Flags().StringVarP(&treeFormat, "format", "f", "tree", "output format: tree, sexpr or json")
}

func runTokens(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}

	res, err := e.pipeline.Tokenize(cmd.Context(), text)
	if err != nil {
		return err
	}
	fmt.Println(render.Tokens(res.Tokens))
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}

	res, err := e.pipeline.Parse(cmd.Context(), text, treeEntry)
	if err != nil {
		return err
	}

	switch treeFormat {
	case "tree":
		fmt.Println(render.Tree(res.Tree))
	case "sexpr":
		fmt.Println(res.Tree.String())
	case "json":
		data, err := cst.MarshalIndent(res.Tree)
		if err != nil {
			return ckerror.Wrap(err, "encode tree").WithCode(ckerror.CodeInternal)
		}
		fmt.Println(string(data))
	default:
		return ckerror.Newf(ckerror.CodeInvalidInput, "unknown tree format %q", treeFormat)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karpagadevi/templed/internal/agent"
	"github.com/karpagadevi/templed/internal/config"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about an Indian temple",
	Long: `Ask a question about an Indian temple.

The daemon routes the question between the fine-tuned temple expert model
and live web search based on what the question asks for.

Examples:
  templed ask "What is the ticket price for Meenakshi Temple?"
  templed ask "Tell me about the history of Brihadisvara Temple"
  templed ask --reasoning "Tell me about Meenakshi Temple and ticket price"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		reasoning, _ := cmd.Flags().GetBool("reasoning")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{"query": query}
		if reasoning {
			req["show_reasoning"] = true
		}

		resp, err := client.post(cmd.Context(), "/v1/ask", req)
		if err != nil {
			return err
		}

		var result agent.Response
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, result.Response)
		fmt.Fprintln(os.Stderr)
		printStatus("Strategy", "%s", result.Strategy)
		if result.TempleName != "" {
			printStatus("Temple", "%s", result.TempleName)
		}
		printStatus("Confidence", "%.0f%%", result.Confidence*100)
		printStatus("Quality", "%d/10", result.Quality)
		if reasoning {
			printStatus("Reasoning", "%s", result.Reasoning)
		}
		if !result.Success {
			printWarning("The answer may be incomplete (source: %s)", result.Source)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("reasoning", false, "show the agent's strategy reasoning")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		last, _ := cmd.Flags().GetInt("last")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/v1/history?last=%d", last))
		if err != nil {
			return err
		}

		var result struct {
			Entries []agent.Entry `json:"entries"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Entries) == 0 {
			fmt.Fprintln(os.Stdout, "No conversation history.")
			return nil
		}

		for _, e := range result.Entries {
			fmt.Fprintf(os.Stdout, "[%s] (%s) %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Strategy, e.Query)
			preview := e.Response
			if len(preview) > 120 {
				preview = preview[:120] + "..."
			}
			fmt.Fprintf(os.Stdout, "    %s\n", preview)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("last", 5, "number of entries to show")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show agent and search-quota statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/stats")
		if err != nil {
			return err
		}

		var stats agent.Stats
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printStatus("Queries", "%d", stats.TotalQueries)
		for strategy, count := range stats.StrategiesUsed {
			printStatus("  "+strategy, "%d", count)
		}
		if len(stats.TemplesDiscussed) > 0 {
			printStatus("Temples", "%s", strings.Join(stats.TemplesDiscussed, ", "))
		}
		usage := stats.Router.TavilyUsage
		printStatus("Searches", "%d/%d (%.1f%%)", usage.SearchesUsed, usage.FreeTierLimit, usage.PercentUsed)
		printStatus("Model", "%s", map[bool]string{true: "loaded", false: "not loaded"}[stats.Router.ModelLoaded])
		return nil
	},
}

// --- clear ---

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the conversation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/v1/history")
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Conversation history cleared")
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage templed configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show the effective value of a config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := config.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s", args[0])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a config key, restoring its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Unset(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known config keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, key := range config.Keys() {
			fmt.Fprintln(os.Stdout, key)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
}

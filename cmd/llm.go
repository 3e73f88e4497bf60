package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made while generating and reviewing",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	Example: `  suneung llm list -p review
  suneung llm list -c 3f2a9c1d --since 2h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := llmQueryOpts(cmd)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeLLMEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per stage and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		stages, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		counts, err := s.RecordRepo().CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("count records: %w", err)
		}
		writeUsage(cmd.OutOrStdout(), stages, models, counts[problem.StatusAccepted])
		return nil
	},
}

func init() {
	addLLMListFlags(llmListCmd)

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

func addLLMListFlags(c *cobra.Command) {
	f := c.Flags()
	f.IntP("limit", "n", 20, "Number of calls to show")
	f.StringP("purpose", "p", "", "Filter by stage ("+llm.PurposeGenerate+", "+llm.PurposeReview+" or "+llm.PurposeRevise+")")
	f.StringP("candidate", "c", "", "Filter by candidate ID")
	f.Duration("since", 0, "Only calls made within this window, e.g. 30m")
}

func llmQueryOpts(cmd *cobra.Command) (store.QueryOpts, error) {
	flags := cmd.Flags()
	var opts store.QueryOpts
	opts.Limit, _ = flags.GetInt("limit")
	opts.Purpose, _ = flags.GetString("purpose")
	opts.CandidateID, _ = flags.GetString("candidate")

	switch opts.Purpose {
	case "", llm.PurposeGenerate, llm.PurposeReview, llm.PurposeRevise:
	default:
		return opts, fmt.Errorf("unknown purpose %q", opts.Purpose)
	}
	if since, _ := flags.GetDuration("since"); since > 0 {
		opts.From = time.Now().Add(-since)
	}
	return opts, nil
}

func writeLLMEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM calls found.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-11s  %-8s  %-28s  %6s  %6s  %7s  %s\n",
		"ID", "Time", "Stage", "Cand", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗ " + truncate(e.ErrorMessage, 40)
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-11s  %-8s  %-28s  %6d  %6d  %7d  %s\n",
			e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose, shortID(e.CandidateID),
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
	}
}

func writeLLMEvent(w io.Writer, e *store.LLMEvent) {
	fields := [][2]string{
		{"ID", fmt.Sprint(e.ID)},
		{"Time", e.Timestamp.Local().Format(timeLayout)},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Stage", e.Purpose},
		{"Candidate", e.CandidateID},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Success", fmt.Sprint(e.Success)},
		{"Error", e.ErrorMessage},
	}
	for _, kv := range fields {
		if kv[1] != "" {
			fmt.Fprintf(w, "%-10s %s\n", kv[0]+":", kv[1])
		}
	}
	if c := llm.LookupCost(e.Model); c != nil {
		fmt.Fprintf(w, "%-10s %s\n", "Cost:", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
	}

	section(w, "REQUEST", e.RequestBody)
	section(w, "RESPONSE", e.ResponseBody)
}

// section prints a captured body, indenting it when it is JSON.
func section(w io.Writer, title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", sep, title, sep)
	if body == "" {
		fmt.Fprintln(w, "(not captured)")
		return
	}
	var buf bytes.Buffer
	if json.Indent(&buf, []byte(body), "", "  ") == nil {
		body = buf.String()
	}
	fmt.Fprintln(w, body)
}

func writeUsage(w io.Writer, stages []store.PurposeUsage, models []store.ModelUsage, accepted int) {
	if len(stages) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}
	rule := strings.Repeat("─", 80)

	fmt.Fprintln(w, "Usage by Stage")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-12s  %6s  %6s  %10s  %10s  %10s  %8s\n",
		"Stage", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(w, rule)
	var calls, failed, in, out int
	for _, st := range stages {
		fmt.Fprintf(w, "%-12s  %6d  %6d  %10d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.Failures, st.InputTokens, st.OutputTokens,
			st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		failed += st.Failures
		in += st.InputTokens
		out += st.OutputTokens
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-12s  %6d  %6d  %10d  %10d  %10d\n", "TOTAL", calls, failed, in, out, in+out)

	if len(models) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated Cost (USD)")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, rule)

	var total float64
	var unpriced []string
	for _, mu := range models {
		cost := "?"
		if c := llm.LookupCost(mu.Model); c != nil {
			usd := c.Cost(mu.InputTokens, mu.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
	}
	fmt.Fprintln(w, rule)

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if accepted > 0 {
		fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n",
			fmt.Sprintf("per accepted problem (%d)", accepted), "", "", "", formatCost(total/float64(accepted)))
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

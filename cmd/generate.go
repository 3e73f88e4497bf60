package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/suneung/internal/app"
	"github.com/abhisek/suneung/internal/llm"
	"github.com/abhisek/suneung/internal/pipeline"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/problemgen"
	"github.com/abhisek/suneung/internal/review"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate problems and run them through review",
	Long: "Generate one or more problems. Each candidate is checked against the " +
		"curriculum, scored, reviewed and revised until it is accepted, rejected " +
		"or fails. Results are stored in the database.",
	Example: `  suneung generate --track calculus --topic 적분법 --tier high --format short_answer --points 4
  suneung generate --exam 30 --killer
  suneung generate --requests batch.yaml --tui`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("track", string(problem.TrackMath2), "Track: math1, math2, calculus, probability or geometry")
	f.String("topic", "미분", "Curriculum unit the problem is about")
	f.String("tier", string(problem.TierMid), "Difficulty tier: low, mid or high")
	f.String("format", string(problem.FormatMultipleChoice), "Answer format: multiple_choice or short_answer")
	f.Int("points", 3, "Point value: 2, 3 or 4")
	f.String("category", "", "Ultra-hard category: identity_master, fusion_master, inequality_master or limit_master")
	f.Int("fusion", 0, "Number of units to combine (2-4)")
	f.String("pattern", "", "Problem pattern hint, e.g. 매개변수미분")
	f.IntP("count", "n", 1, "Number of problems to generate")
	f.Int("exam", 0, "Plan an exam set of N problems instead of a single request")
	f.Bool("killer", false, "Include ultra-hard problems in the exam set")
	f.String("requests", "", "YAML file listing the requests to run")
	f.Bool("tui", false, "Show a live monitor while the batch runs")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	pcfg, err := loadPipelineConfig(cmd)
	if err != nil {
		return err
	}
	reqs, err := requestsFromFlags(cmd, pcfg.Seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	useTUI, _ := cmd.Flags().GetBool("tui")
	if useTUI {
		// The screen belongs to the monitor.
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	provider, err := llm.NewProvider(ctx, pcfg.ProviderConfig(llm.EnvConfig()), s.EventRepo())
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	deps := pipeline.Deps{
		Generator: problemgen.New(provider, problemgen.DefaultConfig()),
		Evaluator: review.NewEvaluator(provider, review.DefaultEvaluatorConfig()),
		Reviser:   review.NewReviser(provider, review.DefaultReviserConfig()),
		Records:   s.RecordRepo(),
		Events:    s.EventRepo(),
	}

	var report *pipeline.Report
	if useTUI {
		batch := app.NewBatch(reqs)
		deps.Observer = batch.Observe
		orch, err := pipeline.New(deps, pcfg)
		if err != nil {
			return err
		}
		report, err = batch.Run(ctx, func(ctx context.Context) *pipeline.Report {
			return orch.RunBatch(ctx, reqs)
		})
		if err != nil {
			return fmt.Errorf("run monitor: %w", err)
		}
	} else {
		out := cmd.OutOrStdout()
		deps.Observer = func(t pipeline.Transition) {
			if t.To.Terminal() {
				fmt.Fprintf(out, "[%d] %-8s %s  %s\n", t.Index+1, t.To, shortID(t.CandidateID), t.Request)
			}
		}
		orch, err := pipeline.New(deps, pcfg)
		if err != nil {
			return err
		}
		report = orch.RunBatch(ctx, reqs)
	}

	printSummary(cmd.OutOrStdout(), report)
	return nil
}

// printSummary writes the per-status counts and elapsed time of a batch.
func printSummary(w io.Writer, r *pipeline.Report) {
	counts := r.Counts()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d candidates in %s\n", len(r.Candidates), r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  accepted  %d\n", counts[problem.StatusAccepted])
	fmt.Fprintf(w, "  rejected  %d\n", counts[problem.StatusRejected])
	fmt.Fprintf(w, "  failed    %d\n", counts[problem.StatusFailed])

	var ids []string
	for _, c := range r.Accepted() {
		ids = append(ids, shortID(c.ID))
	}
	if len(ids) > 0 {
		fmt.Fprintf(w, "accepted: %s\n", strings.Join(ids, " "))
		fmt.Fprintln(w, "view with: suneung records view <id>")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

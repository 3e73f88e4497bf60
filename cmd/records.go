package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/suneung/internal/app"
	"github.com/abhisek/suneung/internal/paper"
	"github.com/abhisek/suneung/internal/problem"
	"github.com/abhisek/suneung/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and export stored problems",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		recs, err := s.RecordRepo().List(ctx, recordFilter(cmd))
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSONL(out, recs)
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		fmt.Fprintf(out, "%-8s  %-14s  %-12s  %5s  %-11s  %s\n",
			"ID", "Status", "Track", "Score", "Grade", "Request")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, r := range recs {
			score, grade := "-", "-"
			if a := r.DifficultyAnalysis; a != nil {
				score = fmt.Sprintf("%d", a.Score)
				grade = string(a.Grade)
			}
			fmt.Fprintf(out, "%-8s  %-14s  %-12s  %5s  %-11s  %s\n",
				shortID(r.ID), r.Status, r.Request.Track.Label(), score, grade, r.Request)
		}

		counts, err := s.RecordRepo().CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("count records: %w", err)
		}
		fmt.Fprintln(out, strings.Repeat("─", 90))
		fmt.Fprintf(out, "stored: %d accepted, %d rejected, %d failed\n",
			counts[problem.StatusAccepted], counts[problem.StatusRejected], counts[problem.StatusFailed])
		return nil
	},
}

var recordsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a stored problem and its state history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		rec, err := resolveRecordID(ctx, s.RecordRepo(), args[0])
		if err != nil {
			return err
		}
		events, err := s.EventRepo().Transitions(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("query transitions: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, paper.Detail(*rec))
		if len(events) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "History")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, e := range events {
				line := fmt.Sprintf("%s  %-14s → %-14s rev %d",
					e.Timestamp.Local().Format("15:04:05"), e.From, e.To, e.Revision)
				if e.Reason != "" {
					line += "  " + e.Reason
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored problems as JSON lines or a Markdown exam sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		title, _ := cmd.Flags().GetString("title")
		if format != "jsonl" && format != "md" {
			return fmt.Errorf("invalid --format %q (jsonl or md)", format)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.RecordRepo().List(context.Background(), recordFilter(cmd))
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}

		write := func(w io.Writer) error {
			if format == "md" {
				return paper.Markdown(w, title, recs)
			}
			return writeJSONL(w, recs)
		}
		if outPath == "" {
			return write(cmd.OutOrStdout())
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if err := write(bw); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", len(recs), outPath)
		return nil
	},
}

var recordsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored problems in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return app.Browse(s.RecordRepo(), recordFilter(cmd))
	},
}

func init() {
	addFilterFlags(recordsListCmd, "")
	addFilterFlags(recordsBrowseCmd, "")
	addFilterFlags(recordsExportCmd, string(problem.StatusAccepted))
	recordsListCmd.Flags().Bool("json", false, "Print records as JSON lines")

	recordsExportCmd.Flags().String("format", "jsonl", "Output format: jsonl or md")
	recordsExportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	recordsExportCmd.Flags().String("title", "수학 영역", "Title of the Markdown exam sheet")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsViewCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	recordsCmd.AddCommand(recordsBrowseCmd)
}

func addFilterFlags(c *cobra.Command, status string) {
	c.Flags().String("status", status, "Filter by status (accepted, rejected, failed, ...)")
	c.Flags().String("track", "", "Filter by track")
	c.Flags().String("grade", "", "Filter by difficulty grade")
	c.Flags().IntP("limit", "n", 0, "Maximum number of records (0 = all)")
}

func recordFilter(cmd *cobra.Command) store.RecordFilter {
	status, _ := cmd.Flags().GetString("status")
	track, _ := cmd.Flags().GetString("track")
	grade, _ := cmd.Flags().GetString("grade")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.RecordFilter{
		Status: problem.Status(status),
		Track:  problem.Track(track),
		Grade:  problem.Grade(grade),
		Limit:  limit,
	}
}

// writeJSONL writes one versioned record per line.
func writeJSONL(w io.Writer, recs []problem.Record) error {
	for _, r := range recs {
		data, err := problem.MarshalRecord(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// resolveRecordID expands an ID prefix to a stored record.
func resolveRecordID(ctx context.Context, repo store.RecordRepo, prefix string) (*problem.Record, error) {
	rec, err := repo.Get(ctx, prefix)
	if err != nil || rec != nil {
		return rec, err
	}
	recs, err := repo.List(ctx, store.RecordFilter{})
	if err != nil {
		return nil, err
	}
	var match *problem.Record
	for i := range recs {
		if strings.HasPrefix(recs[i].ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = &recs[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("record %q not found", prefix)
	}
	return match, nil
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"orgscan/internal/jobs"
)

func newJobsCommand(configFlag *string) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and maintain the job queue",
	}

	jobsCmd.AddCommand(newJobsListCommand(configFlag))
	jobsCmd.AddCommand(newJobsShowCommand(configFlag))
	jobsCmd.AddCommand(newJobsRequeueStuckCommand(configFlag))

	return jobsCmd
}

func openStore(configFlag *string) (*jobs.Store, error) {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	return store, nil
}

func newJobsListCommand(configFlag *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}

			if asJSON || !stdoutIsTerminal() {
				return writeJSON(cmd, jobSummaries(list))
			}

			rows := make([][]string, 0, len(list))
			for _, job := range list {
				rows = append(rows, []string{
					job.ID,
					string(job.Status),
					job.Filename,
					job.CompanyName,
					strconv.Itoa(job.MembersCount()),
					job.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
				})
			}
			out := renderTable(
				[]string{"ID", "Status", "Filename", "Company", "Members", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON regardless of terminal")
	return cmd
}

func newJobsShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job with its stored enrichment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.GetByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("look up job: %w", err)
			}
			if job == nil {
				return fmt.Errorf("job %s not found", args[0])
			}
			detail, err := jobDetail(job)
			if err != nil {
				return err
			}
			return writeJSON(cmd, detail)
		},
	}
}

func newJobsRequeueStuckCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue-stuck",
		Short: "Move jobs stuck in processing back to pending",
		Long: "Jobs left in the processing state by a crashed worker stay there " +
			"until an operator requeues them. This resets every processing job to " +
			"pending so the next serve run picks them up.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.RequeueStuckProcessing(cmd.Context())
			if err != nil {
				return fmt.Errorf("requeue jobs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d job(s)\n", count)
			return nil
		},
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

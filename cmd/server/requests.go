package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garyjia/procurement-hub/pkg/client"
)

type clientFlags struct {
	url   string
	actor string
}

func (f *clientFlags) client() (*client.Client, error) {
	return client.New(f.url, client.WithActor(f.actor))
}

func newRequestsCmd() *cobra.Command {
	flags := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Work with purchase requests on a running service",
	}
	cmd.PersistentFlags().StringVar(&flags.url, "url", "http://localhost:8080", "Service base URL")
	cmd.PersistentFlags().StringVar(&flags.actor, "actor", "", "Name recorded on timeline events")

	cmd.AddCommand(
		newRequestsListCmd(flags),
		newRequestsGetCmd(flags),
		newRequestsSubmitCmd(flags),
		newRequestsCompleteCmd(flags),
		newRequestsDecideCmd(flags, "approve"),
		newRequestsDecideCmd(flags, "reject"),
	)
	return cmd
}

func newRequestsListCmd(flags *clientFlags) *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			page, err := c.ListRequests(cmd.Context(), opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDEPARTMENT\tSTATUS\tAMOUNT")
			for _, r := range page.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Department, r.Status, r.Amount)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %d total\n", page.Meta.Page, page.Meta.Pages, page.Meta.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Page size")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&opts.Department, "department", "", "Filter by department")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Text search")
	return cmd
}

func newRequestsGetCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a request with its approval chain and timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			r, err := c.GetRequest(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", r.ID, r.Title)
			fmt.Fprintf(out, "Requester: %s (%s)\n", r.Requester, r.Department)
			fmt.Fprintf(out, "Status:    %s\n", r.Status)
			fmt.Fprintf(out, "Amount:    %s\n", r.Amount)
			fmt.Fprintln(out, "\nApprovers:")
			for i, step := range r.Approvers {
				fmt.Fprintf(out, "  %d. %s, %s: %s\n", i, step.ApproverName, step.Role, step.Status)
			}
			fmt.Fprintln(out, "\nTimeline:")
			for _, evt := range r.Timeline {
				line := fmt.Sprintf("  %s  %s  %s", evt.Timestamp.Format("2006-01-02 15:04"), evt.Actor, evt.Action)
				if evt.Comment != nil {
					line += ": " + *evt.Comment
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newRequestsSubmitCmd(flags *clientFlags) *cobra.Command {
	return newRequestsActionCmd(flags, "submit", "Submit a draft for approval",
		func(c *client.Client) actionFunc { return c.Submit })
}

func newRequestsCompleteCmd(flags *clientFlags) *cobra.Command {
	return newRequestsActionCmd(flags, "complete", "Mark an approved request fulfilled and issue its purchase order",
		func(c *client.Client) actionFunc { return c.Complete })
}

type actionFunc func(ctx context.Context, id, comment string) (*client.Request, error)

func newRequestsActionCmd(flags *clientFlags, name, short string, pick func(*client.Client) actionFunc) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.client()
			if err != nil {
				return err
			}
			r, err := pick(c)(cmd.Context(), args[0], comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is %s.\n", r.ID, r.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Comment for the timeline")
	return cmd
}

func newRequestsDecideCmd(flags *clientFlags, decision string) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   decision + " <id> <step>",
		Short: "Decide the active approval step (" + decision + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("step must be a number: %w", err)
			}
			c, err := flags.client()
			if err != nil {
				return err
			}

			decide := c.Approve
			if decision == "reject" {
				decide = c.Reject
			}
			r, err := decide(cmd.Context(), args[0], step, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step %d of %s decided, request is %s.\n", step, r.ID, r.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Comment for the timeline")
	return cmd
}

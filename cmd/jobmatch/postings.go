package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain/job"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Inspect or remove postings in the local index",
}

var postingsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print a local posting as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostingsGet,
}

var postingsDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Remove local postings from the index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPostingsDelete,
}

func init() {
	postingsCmd.AddCommand(postingsGetCmd, postingsDeleteCmd)
	rootCmd.AddCommand(postingsCmd)
}

// postingView is the CLI rendering of a stored posting. The embedding is summarised by its size.
type postingView struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	Description    string   `json:"description,omitempty"`
	Location       string   `json:"location,omitempty"`
	URL            string   `json:"url,omitempty"`
	Seniority      string   `json:"seniority,omitempty"`
	PostedAt       string   `json:"posted_at,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	Dimensions     int      `json:"embedding_dimensions"`
}

func newPostingView(p *job.Posting) postingView {
	skills := p.RequiredSkills()
	if skills == nil {
		skills = []string{}
	}
	return postingView{
		ID:             p.ID(),
		Source:         string(p.Source()),
		Title:          p.Title(),
		Company:        p.Company(),
		Description:    p.Description(),
		Location:       p.Location(),
		URL:            p.URL(),
		Seniority:      string(p.Seniority()),
		PostedAt:       p.PostedAt(),
		RequiredSkills: skills,
		Dimensions:     len(p.Embedding()),
	}
}

func runPostingsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.index.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get posting: %w", err)
	}
	out, err := json.MarshalIndent(newPostingView(&p), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal posting: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func runPostingsDelete(cmd *cobra.Command, ids []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range ids {
		if err := a.index.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete posting %s: %w", id, err)
		}
		a.logger.Info("Posting deleted", zap.String("id", id))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", len(ids))
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/config"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/spf13/cobra"
)

var linksTimeout time.Duration

var linksCmd = &cobra.Command{
	Use:   "check-links",
	Short: "Check that open submission URLs still resolve",
	Long: `Fetch every open submission's URL and report the ones that no longer
resolve. Useful before a review session: a dead link usually means the
submitter force-pushed or deleted the branch.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheckLinks(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	linksCmd.Flags().DurationVar(&linksTimeout, "timeout", 10*time.Second, "Per-request timeout")
}

func runCheckLinks() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	base := airtable.NewClient(cfg.Airtable.Endpoint, cfg.Airtable.BaseID, cfg.Airtable.APIKey)
	submissionRepo := repository.NewSubmissionRepository(base)

	submissions, err := submissionRepo.List(context.Background(), "")
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	client := &http.Client{Timeout: linksTimeout}
	checked := 0
	broken := 0

	for i := range submissions {
		s := &submissions[i]
		if !s.IsOpen() || s.URL == "" {
			continue
		}
		checked++

		resp, err := client.Get(s.URL)
		if err != nil {
			log.Printf("BROKEN %s (%s): %v", s.URL, s.ID, err)
			broken++
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			log.Printf("BROKEN %s (%s): HTTP %d", s.URL, s.ID, resp.StatusCode)
			broken++
		}
	}

	log.Printf("Checked %d open submissions, %d broken", checked, broken)
	if broken > 0 {
		return fmt.Errorf("%d broken submission links", broken)
	}
	return nil
}

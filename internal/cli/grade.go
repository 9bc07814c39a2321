package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/markbook-app/markbook/internal/aigrade"
	"github.com/markbook-app/markbook/internal/config"
)

// gradingFile is the on-disk rubric and calibration for one quiz,
// YAML or JSON by extension.
type gradingFile struct {
	Rubric      map[string]aigrade.Rubric `json:"rubric" yaml:"rubric"`
	Calibration []aigrade.Example         `json:"calibrationExamples" yaml:"calibrationExamples"`
}

func newGradeCmd() *cobra.Command {
	var (
		quizID      string
		groupKey    string
		contextPath string
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Bulk-grade pending answers with the configured model",
		Long: `Sends every ungraded answer of a quiz's cohort to the external
grading model and attaches the replies as advisory grades for teacher
approval. With --dry-run the prompts are printed and nothing is sent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv()
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			if !dryRun && cfg.GradingAPIURL == "" {
				return fmt.Errorf("GRADING_API_URL not set (use --dry-run to preview prompts)")
			}

			store, _, err := openStoreDB(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			qz, err := store.GetQuiz(ctx, quizID)
			if err != nil {
				return err
			}
			records, err := store.ListResponses(ctx, quizID, groupKey)
			if err != nil {
				return err
			}

			gc := aigrade.Context{Quiz: qz}
			if contextPath != "" {
				gf, err := loadGradingFile(contextPath)
				if err != nil {
					return err
				}
				gc.Rubric = gf.Rubric
				gc.Calibration = gf.Calibration
			}

			var model aigrade.Model
			if !dryRun {
				model = aigrade.NewHTTPModel(cfg.GradingAPIURL, cfg.GradingModel, cfg.GradingAPIKey)
			}
			svc := aigrade.NewService(model,
				aigrade.WithLogger(logger),
				aigrade.WithDryRun(dryRun),
			)

			n, err := svc.GradeCohort(ctx, gc, records, store.PutResponse)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Printf("dry run: %d records previewed, nothing written\n", len(records))
				return nil
			}
			fmt.Printf("graded %d answers across %d records\n", n, len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz ID to grade")
	cmd.Flags().StringVar(&groupKey, "group", "", "restrict to one cohort group")
	cmd.Flags().StringVar(&contextPath, "context", "", "rubric and calibration file (.yaml or .json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print prompts without calling the model")
	cmd.MarkFlagRequired("quiz")
	return cmd
}

func loadGradingFile(path string) (gradingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gradingFile{}, err
	}
	var gf gradingFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &gf)
	default:
		err = json.Unmarshal(data, &gf)
	}
	if err != nil {
		return gradingFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return gf, nil
}

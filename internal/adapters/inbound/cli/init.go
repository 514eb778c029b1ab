package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dqcheck/dqcheck/internal/adapters/outbound/config"
	"github.com/dqcheck/dqcheck/internal/adapters/outbound/dataset"
	"github.com/dqcheck/dqcheck/internal/domain"
)

const suitesDir = "expectations"

func newInitCmd() *cobra.Command {
	var (
		from  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .dqcheck.yaml and a starter suite",
		Long: "Create a .dqcheck.yaml with the defaults spelled out and a starter suite under expectations/. " +
			"With --from, the suite is derived from the columns of an existing dataset.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfgDest := filepath.Join(absPath, config.FileName)
			suite := sampleSuite()
			if from != "" {
				ds, err := dataset.New().Load(from, domain.LoadOptions{
					Delimiter:  ',',
					NullValues: domain.DefaultNullValues,
				})
				if err != nil {
					return fmt.Errorf("reading %s: %w", from, err)
				}
				suite = suiteFromDataset(ds)
			}
			suiteDest := filepath.Join(absPath, suitesDir, suite.Name+".json")

			if !force {
				for _, dest := range []string{cfgDest, suiteDest} {
					if _, err := os.Stat(dest); err == nil {
						return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
					}
				}
			}

			if err := os.WriteFile(cfgDest, []byte(generateConfig()), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			data, err := json.MarshalIndent(suite, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding suite: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(suiteDest), 0755); err != nil {
				return fmt.Errorf("creating %s: %w", suitesDir, err)
			}
			if err := os.WriteFile(suiteDest, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("writing suite: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filepath.Join(suitesDir, suite.Name+".json"))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Derive the starter suite from this dataset's columns")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func generateConfig() string {
	cfg := domain.DefaultConfig()
	return fmt.Sprintf(`# dqcheck configuration
# Environment variables DQCHECK_REPORTS_DIR, DQCHECK_RESULT_FORMAT,
# DQCHECK_LOG_LEVEL and DQCHECK_NO_OPEN override these values.

reports_dir: %s

# BOOLEAN_ONLY, BASIC, SUMMARY or COMPLETE
result_format: %s

# Record an expectation that raises as failed instead of aborting the run.
catch_exceptions: true

# html: false
# open_browser: true
# history: true

# delimiter: ","
# sheet: Sheet1
# null_values: ["", "NA", "N/A", "null"]
`, cfg.ReportsDir, cfg.ResultFormat)
}

func sampleSuite() domain.Suite {
	return domain.Suite{
		Name:          "sample_suite",
		DataAssetType: "Dataset",
		Expectations: []domain.ExpectationConfig{
			{
				Type:   "expect_table_row_count_to_be_between",
				Kwargs: map[string]any{"min_value": 1},
			},
			{
				Type:   "expect_column_values_to_not_be_null",
				Kwargs: map[string]any{"column": "id"},
			},
			{
				Type:   "expect_column_values_to_be_unique",
				Kwargs: map[string]any{"column": "id"},
			},
		},
	}
}

// suiteFromDataset pins the column layout and row presence of ds.
func suiteFromDataset(ds *domain.Dataset) domain.Suite {
	s := domain.Suite{
		Name:          ds.Name + "_suite",
		DataAssetType: "Dataset",
		Expectations: []domain.ExpectationConfig{
			{
				Type:   "expect_table_columns_to_match_ordered_list",
				Kwargs: map[string]any{"column_list": ds.Columns},
			},
			{
				Type:   "expect_table_row_count_to_be_between",
				Kwargs: map[string]any{"min_value": 1},
			},
		},
	}
	for _, col := range ds.Columns {
		cells, _ := ds.Column(col)
		missing := 0
		for _, c := range cells {
			if c.Missing {
				missing++
			}
		}
		if missing == 0 {
			s.Expectations = append(s.Expectations, domain.ExpectationConfig{
				Type:   "expect_column_values_to_not_be_null",
				Kwargs: map[string]any{"column": col},
			})
		}
	}
	return s
}

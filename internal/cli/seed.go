package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ammerola/api-framework/internal/core/domain"
	"github.com/ammerola/api-framework/internal/dataset"
)

func (a *app) newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the people table with the embedded dataset",
		Long: `seed deletes every row of the people table and inserts the embedded dataset,
or the people read from --file (.xlsx with an id/fname/lname/age/email header
row, or .yaml in the embedded fixture's shape).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			people, err := loadPeople(file)
			if err != nil {
				return err
			}

			database, err := a.database(ctx)
			if err != nil {
				return err
			}
			defer a.closeDatabase(ctx, database)

			result, err := dataset.SeedPeople(ctx, database, people, a.log.Logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded people: %d deleted, %d inserted in %s\n",
				result.Deleted, result.Inserted, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Load people from an .xlsx or .yaml file instead of the embedded dataset")

	return cmd
}

func loadPeople(file string) ([]domain.Person, error) {
	if file == "" {
		return dataset.People()
	}
	return dataset.LoadPeopleFile(file)
}

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"foodlens/internal/profile"
	"foodlens/internal/session"
)

type profileFlags struct {
	userID     string
	dob        string
	gender     string
	weight     float64
	weightUnit string
	height     float64
	heightUnit string
	allergy    string
	disease    string
	condition  string
}

func (f *profileFlags) register(cmd *cobra.Command, withUserID bool) {
	if withUserID {
		cmd.Flags().StringVar(&f.userID, "user-id", "", "User id (an email address enables report delivery)")
	}
	cmd.Flags().StringVar(&f.dob, "dob", "", "Date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Male, Female or Other")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "Weight")
	cmd.Flags().StringVar(&f.weightUnit, "weight-unit", string(profile.WeightKG), "KG or lbs")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Height")
	cmd.Flags().StringVar(&f.heightUnit, "height-unit", string(profile.HeightCM), "cm or inch")
	cmd.Flags().StringVar(&f.allergy, "allergy", "", "Comma-separated food allergies")
	cmd.Flags().StringVar(&f.disease, "disease", "", "Comma-separated existing diseases")
	cmd.Flags().StringVar(&f.condition, "condition", "", "Comma-separated other health conditions")
}

// apply copies every flag the user set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p *profile.HealthProfile) error {
	changed := cmd.Flags().Changed
	if changed("user-id") {
		p.UserID = f.userID
	}
	if changed("dob") {
		dob, err := time.Parse("2006-01-02", f.dob)
		if err != nil {
			return fmt.Errorf("--dob must be YYYY-MM-DD: %w", err)
		}
		p.DateOfBirth = dob
	}
	if changed("gender") {
		p.Gender = profile.Gender(f.gender)
	}
	if changed("weight") {
		p.Weight = f.weight
	}
	if changed("weight-unit") || p.WeightUnit == "" {
		p.WeightUnit = profile.WeightUnit(f.weightUnit)
	}
	if changed("height") {
		p.Height = f.height
	}
	if changed("height-unit") || p.HeightUnit == "" {
		p.HeightUnit = profile.HeightUnit(f.heightUnit)
	}
	if changed("allergy") {
		p.FoodAllergy = f.allergy
	}
	if changed("disease") {
		p.ExistingDisease = f.disease
	}
	if changed("condition") {
		p.OtherHealthCondition = f.condition
	}
	return nil
}

func newProfileCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create, edit and inspect health profiles",
	}

	createFlags := &profileFlags{}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile and look up guidance for its conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			draft := &profile.HealthProfile{}
			if err := createFlags.apply(cmd, draft); err != nil {
				return err
			}
			ctl := cli.app.NewController()
			ctl.NewProfile()
			res, err := ctl.SaveProfile(cmd.Context(), draft)
			if err != nil {
				return err
			}
			printSaveResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	createFlags.register(createCmd, true)
	cmd.AddCommand(createCmd)

	editFlags := &profileFlags{}
	editCmd := &cobra.Command{
		Use:   "edit <user-id>",
		Short: "Change a saved profile; guidance is refreshed only when conditions change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			ctl := cli.app.NewController()
			saved, err := ctl.LoadProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			draft := *saved
			if err := editFlags.apply(cmd, &draft); err != nil {
				return err
			}
			res, err := ctl.SaveProfile(cmd.Context(), &draft)
			if err != nil {
				return err
			}
			printSaveResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	editFlags.register(editCmd, false)
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a profile summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			p, err := cli.app.Profiles.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), profile.Summary(p))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			out := cmd.OutOrStdout()
			profiles := cli.app.Profiles.List(cmd.Context())
			if len(profiles) == 0 {
				fmt.Fprintln(out, gray("no profiles saved"))
				return nil
			}
			for _, p := range profiles {
				fmt.Fprintf(out, "%s  %s, %d years\n", bold(p.UserID), p.Gender, p.Age)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a profile and its cached guidance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd); err != nil {
				return err
			}
			defer cli.close()

			if !cli.app.Profiles.Delete(cmd.Context(), args[0]) {
				return fmt.Errorf("profile %q not found", args[0])
			}
			printSuccess(cmd.OutOrStdout(), "profile %s deleted", args[0])
			return nil
		},
	})

	return cmd
}

func printSaveResult(w io.Writer, res *session.SaveResult) {
	switch res.Outcome {
	case session.OutcomeUnchanged:
		fmt.Fprintln(w, gray("no changes to save"))
		return
	case session.OutcomeCreated:
		printSuccess(w, "profile %s created", res.Profile.UserID)
	default:
		printSuccess(w, "profile %s updated", res.Profile.UserID)
	}

	if !res.Enriched {
		fmt.Fprintln(w, gray("conditions unchanged, cached guidance kept"))
		return
	}
	if res.Record != nil && res.Record.TotalConditions > 0 {
		fmt.Fprintf(w, "guidance found for %d of %d conditions\n", res.Record.SuccessfulSearches, res.Record.TotalConditions)
	}
	if res.EnrichmentErr != nil {
		printWarning(w, "guidance could not be cached: %v", res.EnrichmentErr)
	}
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/emilydolson/hospital-beds-per-capita/internal/domain"
	"github.com/emilydolson/hospital-beds-per-capita/internal/loader"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var (
		facilityPath   string
		populationPath string
		year           int
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the input datasets for structural and cross-coverage problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := runValidation(cmd, facilityPath, populationPath, year); code != 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&facilityPath, "facilities", "data/hospitals.csv", "hospital facility CSV")
	cmd.Flags().StringVar(&populationPath, "population", "data/population_estimates.csv", "county population estimates CSV")
	cmd.Flags().IntVar(&year, "year", 2018, "population estimate reference year")

	return cmd
}

func runValidation(cmd *cobra.Command, facilityPath, populationPath string, year int) int {
	out := cmd.OutOrStdout()
	var phases []*phase

	facilityPhase, facilities := validateFacilities(facilityPath)
	phases = append(phases, facilityPhase)

	populationPhase, population := validatePopulation(populationPath, year)
	phases = append(phases, populationPhase)

	if facilityPhase.passed() && populationPhase.passed() {
		phases = append(phases, validateCoverage(facilities, population))
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Fprintf(out, "PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Fprintf(out, "     %s\n", e)
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func validateFacilities(path string) (*phase, []domain.Facility) {
	p := &phase{name: "facility file"}

	facilities, err := loader.LoadFacilities(path)
	if err != nil {
		p.errorf("%v", err)
		return p, nil
	}
	if len(facilities) == 0 {
		p.errorf("no facility rows")
		return p, nil
	}

	var qualifying, sentinel int
	for _, f := range facilities {
		reason, ok := domain.Exclusion(f)
		if ok {
			qualifying++
		} else if reason == domain.ExcludedSentinel {
			sentinel++
		}
	}
	if qualifying == 0 {
		p.errorf("no qualifying facility rows among %d", len(facilities))
	}
	if sentinel == len(facilities) {
		p.errorf("every bed count is the -999 sentinel")
	}

	return p, facilities
}

func validatePopulation(path string, year int) (*phase, []domain.PopulationRecord) {
	p := &phase{name: "population file"}

	population, err := loader.LoadPopulation(path, year)
	if err != nil {
		p.errorf("%v", err)
		return p, nil
	}
	if len(population) == 0 {
		p.errorf("no county rows")
		return p, nil
	}

	seen := make(map[string]bool, len(population))
	for _, rec := range population {
		if seen[rec.FIPS] {
			p.errorf("duplicate FIPS %s (%s)", rec.FIPS, rec.AreaName)
		}
		seen[rec.FIPS] = true

		if _, err := domain.NormalizeRegion(rec.State, rec.FIPS); err != nil {
			p.errorf("%v", err)
		}
	}

	return p, population
}

// validateCoverage checks that every county with a qualifying facility has a
// population row. Uncovered counties would be dropped by the join without a
// population record to anchor them.
func validateCoverage(facilities []domain.Facility, population []domain.PopulationRecord) *phase {
	p := &phase{name: "FIPS cross-coverage"}

	popFIPS := make(map[string]bool, len(population))
	for _, rec := range population {
		popFIPS[rec.FIPS] = true
	}

	uncovered := make(map[string]bool)
	for _, f := range facilities {
		if _, ok := domain.Exclusion(f); !ok {
			continue
		}
		fips := domain.NormalizeFIPS(f.FIPS)
		if !popFIPS[fips] {
			uncovered[fips] = true
		}
	}

	if len(uncovered) > 0 {
		codes := make([]string, 0, len(uncovered))
		for fips := range uncovered {
			codes = append(codes, fips)
		}
		sort.Strings(codes)
		if len(codes) > 10 {
			p.errorf("%d facility counties missing from population file, first 10: %v", len(codes), codes[:10])
		} else {
			p.errorf("facility counties missing from population file: %v", codes)
		}
	}

	return p
}

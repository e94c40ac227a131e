/*
Copyright © 2019 the ChemBench authors.
This file is part of ChemBench.

ChemBench is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ChemBench is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ChemBench.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package benchutil contains the command-line interface and
// configuration handling for ChemBench.
package benchutil

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/chembench"
	"github.com/spatialmodel/chembench/bench"
	"github.com/spatialmodel/chembench/science/kinetics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives the log messages of all commands.
var Log = logrus.New()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ChemBench.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages
              to print: one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MaterialsFile",
			usage: `
              MaterialsFile specifies the path to a TOML file of additional
              material templates, in [[material]] tables. It can be a local
              file or a blob storage URL (file://, gs://, or s3://).
              The built-in catalog is always available.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), materialsCmd.Flags()},
		},
		{
			name: "ReactionFile",
			usage: `
              ReactionFile specifies the path to the TOML reaction description
              whose reactions occur in every vessel. It can be a local file or
              a blob storage URL. If it is empty, no reactions occur.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Solver",
			usage: `
              Solver specifies the reaction integration strategy: "RK45" for the
              adaptive Runge-Kutta integrator or "fast" for the fixed-budget
              depletion-limited integrator.`,
			defaultVal: kinetics.DefaultSolver,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Substeps",
			usage: `
              Substeps specifies the nominal number of substeps per time step
              used by the "fast" solver.`,
			defaultVal: kinetics.DefaultSubsteps,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dt",
			usage: `
              Dt specifies the time advanced in each step, in seconds.`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumSteps",
			usage: `
              NumSteps specifies the number of steps to run. Steps beyond the
              end of the Steps script take no actions.`,
			shorthand:  "n",
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Pixels",
			usage: `
              Pixels specifies the number of vertical slices used to resolve
              the layers of each vessel when draining.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SettleTime",
			usage: `
              SettleTime specifies the time scale over which the layers of each
              vessel separate, in seconds.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MaxTempChange",
			usage: `
              MaxTempChange specifies the largest temperature change allowed in
              a single heating action, in kelvin.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PenaltyExpression",
			usage: `
              PenaltyExpression specifies how the feedback counts of each step
              are combined into a penalty. It can use the variables spill,
              heat_limited, overdrain, other, and step.`,
			defaultVal: bench.DefaultPenaltyExpression,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Vessels",
			usage: `
              Vessels specifies the vessels on the bench, as a list of tables
              with the fields Label, Volume [L], Temperature [K], and Contents,
              a table of material IDs and quantities [mol]. When set from the
              command line or an environment variable it should be a JSON array.`,
			defaultVal: `[{"Label": "beaker", "Volume": 1, "Contents": {"H2O": 30}}, {"Label": "flask", "Volume": 0.5}]`,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Steps",
			usage: `
              Steps specifies the actions to take in each step, as a list of
              tables each with an Actions list. Each action has the fields Kind
              (wait, pour, pour_volume, drain, mix, or heat), Vessel, Target
              (-1 for waste), Amount, and Coeff. When set from the command line
              or an environment variable it should be a JSON array.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to a TOML file where the penalty of
              each step and the final vessel contents will be written. If it is
              empty, only a summary is printed.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CHEMBENCH")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
			Cfg.BindEnv(option.name)
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(describeCmd)
	Root.AddCommand(materialsCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("chembench: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("chembench: %v", err)
	}
	Log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "chembench",
	Short: "A simulated chemistry laboratory bench.",
	Long: `ChemBench simulates laboratory benches as sets of vessels whose contents
change in response to pouring, draining, mixing, and heating, and to chemical
reactions. Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CHEMBENCH_var' where 'var' is the
name of the variable to be set. File name variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ChemBench.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ChemBench v%s\n", chembench.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs an episode.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an episode.",
	Long: `run creates the configured vessels and advances them through NumSteps steps,
taking the actions in the Steps script and reacting the vessel contents
according to ReactionFile in every step. It prints the penalty of each step
and the final contents of each vessel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(context.Background(), cmd, Cfg)
	},
	DisableAutoGenTag: true,
}

// describeCmd is a command that prints a reaction description.
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Check and print a reaction description.",
	Long: `describe reads and checks the reaction description in ReactionFile and
prints it along with its fingerprint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := os.ExpandEnv(Cfg.GetString("ReactionFile"))
		if f == "" {
			return fmt.Errorf("chembench: ReactionFile is not specified")
		}
		d, err := kinetics.ReadDescription(context.Background(), f)
		if err != nil {
			return err
		}
		cmd.Printf("# %d reactions among %d materials; fingerprint %s\n",
			d.NumReactions(), len(d.Materials), d.Fingerprint())
		return d.Dump(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

// materialsCmd is a command that lists the available materials.
var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the available materials.",
	Long: `materials lists the built-in materials and any in MaterialsFile, with
their molar masses and their phases at standard temperature.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := Registry(context.Background(), Cfg)
		if err != nil {
			return err
		}
		for _, id := range reg.IDs() {
			t, _ := reg.Lookup(id)
			cmd.Printf("%-8s %-24s %10.4g g/mol  %s\n", id, t.Name, t.MolarMass,
				t.PhaseAt(chembench.StandardTemperature))
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// stepRecord is the output record of one step.
type stepRecord struct {
	Step     int            `toml:"step"`
	Penalty  float64        `toml:"penalty"`
	Feedback map[string]int `toml:"feedback"`
}

// vesselRecord is the output record of the final state of a vessel.
type vesselRecord struct {
	Label       string             `toml:"label"`
	Temperature float64            `toml:"temperature"`
	Filled      float64            `toml:"filled_volume"`
	Contents    map[string]float64 `toml:"contents"`
}

type runRecord struct {
	Steps   []stepRecord   `toml:"step"`
	Vessels []vesselRecord `toml:"vessel"`
}

// Run runs an episode as specified by cfg, printing a summary to the
// output of cmd.
func Run(ctx context.Context, cmd *cobra.Command, cfg *viper.Viper) error {
	reg, err := Registry(ctx, cfg)
	if err != nil {
		return err
	}
	engine, err := Engine(ctx, cfg, reg, kinetics.NewLoader(1), Log)
	if err != nil {
		return err
	}
	bc, err := BenchConfig(cfg, reg)
	if err != nil {
		return err
	}
	script, err := Script(cfg)
	if err != nil {
		return err
	}
	var reactor chembench.Reactor
	if engine != nil {
		reactor = engine
		Log.WithFields(logrus.Fields{
			"reactions": engine.Description().Name,
			"solver":    engine.SolverName(),
		}).Info("chembench: reactions enabled")
	}
	b, err := bench.New(bc, reg, reactor, bench.Logger(Log))
	if err != nil {
		return err
	}

	var rec runRecord
	var total float64
	n := cfg.GetInt("NumSteps")
	for i := 0; i < n; i++ {
		var actions []bench.Action
		if i < len(script) {
			actions = script[i]
		}
		r, err := b.Step(actions)
		if err != nil {
			return fmt.Errorf("chembench: step %d: %v", i, err)
		}
		total += r.Penalty
		rec.Steps = append(rec.Steps, stepRecord{Step: i, Penalty: r.Penalty, Feedback: r.Counts})
		Log.WithFields(logrus.Fields{"step": i, "penalty": r.Penalty}).Debug("chembench: step complete")
	}
	cmd.Printf("%d steps; total penalty %g\n", n, total)
	for _, v := range b.Vessels() {
		vr := vesselRecord{
			Label:       v.Label,
			Temperature: v.Temperature,
			Filled:      v.FilledVolume(),
			Contents:    make(map[string]float64, len(v.Materials)),
		}
		c := v.Conditions()
		cmd.Printf("%s: %v; %v of %v filled; %v\n", v.Label, c.Temperature, c.FilledVolume, c.Volume, c.Mass)
		for _, id := range materialIDs(v) {
			vr.Contents[id] = v.Materials[id].Mol
			cmd.Printf("  %-8s %.6g mol\n", id, v.Materials[id].Mol)
		}
		rec.Vessels = append(rec.Vessels, vr)
	}

	if o := os.ExpandEnv(cfg.GetString("OutputFile")); o != "" {
		f, err := os.Create(o)
		if err != nil {
			return fmt.Errorf("chembench: creating output file: %v", err)
		}
		if err := toml.NewEncoder(f).Encode(rec); err != nil {
			f.Close()
			return fmt.Errorf("chembench: writing output file: %v", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("chembench: closing output file: %v", err)
		}
	}
	return nil
}

// materialIDs returns the sorted IDs of the materials in v.
func materialIDs(v *chembench.Vessel) []string {
	ids := make([]string, 0, len(v.Materials))
	for id := range v.Materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

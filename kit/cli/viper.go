package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Opt is a single command-line option.
type Opt struct {
	DestP   interface{} // pointer to the destination
	Flag    string
	Default interface{}
	Desc    string
}

// NewOpt creates a new command line option.
func NewOpt(destP interface{}, flag string, dflt interface{}, desc string) Opt {
	return Opt{
		DestP:   destP,
		Flag:    flag,
		Default: dflt,
		Desc:    desc,
	}
}

// Program parses CLI options.
type Program struct {
	// Run is invoked by cobra on execute.
	Run func() error
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Opts are the command line/env var options to the program.
	Opts []Opt
}

// NewCommand creates a new cobra command to be executed that respects env
// vars. The upper-case version of the program's name prefixes all environment
// variables, with "-" normalized to "_".
func NewCommand(p *Program) *cobra.Command {
	var cmd = &cobra.Command{
		Use:  p.Name,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return p.Run()
		},
	}

	viper.SetEnvPrefix(strings.ToUpper(p.Name))
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	BindOptions(cmd, p.Opts)
	return cmd
}

// BindOptions adds opts to the specified command and automatically registers
// the matching env vars with viper.
func BindOptions(cmd *cobra.Command, opts []Opt) {
	for _, o := range opts {
		flagset := cmd.Flags()
		envVal := viper.Get(envKey(o.Flag))

		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			flagset.StringVar(destP, o.Flag, d, o.Desc)
			if envVal != nil {
				*destP = viper.GetString(envKey(o.Flag))
			}
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			flagset.IntVar(destP, o.Flag, d, o.Desc)
			if envVal != nil {
				*destP = viper.GetInt(envKey(o.Flag))
			}
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			flagset.BoolVar(destP, o.Flag, d, o.Desc)
			if envVal != nil {
				*destP = viper.GetBool(envKey(o.Flag))
			}
		case *time.Duration:
			var d time.Duration
			if o.Default != nil {
				d = o.Default.(time.Duration)
			}
			flagset.DurationVar(destP, o.Flag, d, o.Desc)
			if envVal != nil {
				*destP = viper.GetDuration(envKey(o.Flag))
			}
		case *[]string:
			var d []string
			if o.Default != nil {
				d = o.Default.([]string)
			}
			flagset.StringSliceVar(destP, o.Flag, d, o.Desc)
			if envVal != nil {
				*destP = viper.GetStringSlice(envKey(o.Flag))
			}
		default:
			panic(fmt.Sprintf("unsupported option type %T for flag %q", o.DestP, o.Flag))
		}
	}
}

func envKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

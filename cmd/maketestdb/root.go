package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Every flag can also be supplied as MAKETESTDB_<FLAG> in the environment,
// with dashes replaced by underscores. Passwords in particular should be
// passed that way rather than on the command line.
const envPrefix = "MAKETESTDB"

// cloneOptions holds the resolved source and target coordinates.
type cloneOptions struct {
	SourceDB       string
	SourceHost     string
	SourcePort     int
	SourceUser     string
	SourcePassword string

	TargetDB       string
	TargetHost     string
	TargetPort     int
	TargetUser     string
	TargetPassword string

	RemoveExisting bool
	UniqueSuffix   bool
}

var rootCmd = &cobra.Command{
	Use:   "maketestdb",
	Short: "Create a test database from a production schema",
	Long: `maketestdb copies a MySQL database's schema into a test database.

The copy contains no data, all DEFINER clauses are stripped, and every
foreign key constraint is removed from the result. The target database
name must contain the string '__TEST__'; maketestdb refuses to touch
anything otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		code, err := runClone(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		exitCode = code
		return err
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("source-db", "", "source database")
	flags.String("source-host", "", "source host")
	flags.Int("source-port", 3306, "source port")
	flags.String("source-username", "", "username for accessing the source database")
	flags.String("source-password", "", "password for accessing the source database")
	flags.String("target-db", "", "target database")
	flags.String("target-host", "", "target host")
	flags.Int("target-port", 3306, "target port")
	flags.String("target-username", "", "username for accessing the target database")
	flags.String("target-password", "", "password for accessing the target database")
	flags.Bool("remove-existing", false, "remove the target database if it exists already")
	flags.Bool("unique-suffix", false, "append a random suffix to the target database name")

	rootCmd.AddCommand(versionCmd)
}

// resolveOptions merges flag and environment values via viper and checks
// that every required coordinate is present.
func resolveOptions(cmd *cobra.Command) (cloneOptions, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return cloneOptions{}, err
	}

	opts := cloneOptions{
		SourceDB:       v.GetString("source-db"),
		SourceHost:     v.GetString("source-host"),
		SourcePort:     v.GetInt("source-port"),
		SourceUser:     v.GetString("source-username"),
		SourcePassword: v.GetString("source-password"),
		TargetDB:       v.GetString("target-db"),
		TargetHost:     v.GetString("target-host"),
		TargetPort:     v.GetInt("target-port"),
		TargetUser:     v.GetString("target-username"),
		TargetPassword: v.GetString("target-password"),
		RemoveExisting: v.GetBool("remove-existing"),
		UniqueSuffix:   v.GetBool("unique-suffix"),
	}

	required := []struct {
		flag  string
		value string
	}{
		{"source-db", opts.SourceDB},
		{"source-host", opts.SourceHost},
		{"source-username", opts.SourceUser},
		{"source-password", opts.SourcePassword},
		{"target-db", opts.TargetDB},
		{"target-host", opts.TargetHost},
		{"target-username", opts.TargetUser},
		{"target-password", opts.TargetPassword},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, "--"+r.flag)
		}
	}
	if len(missing) > 0 {
		return cloneOptions{}, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	return opts, nil
}

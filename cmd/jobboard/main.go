package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Job board API with moderated postings",
	Long: `jobboard serves a public job board API. Submitted postings wait for
an administrator to approve them and stay listed for thirty days.

Storage is PostgreSQL when DATABASE_URL is set and a local SQLite file
otherwise.

Examples:
  jobboard serve --port 8080   # Start the API
  jobboard init-db             # Create the schema and exit
  jobboard hash-password s3cr  # Print a value for ADMIN_PASSWORD_HASH`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine, the environment may already be set
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to load .env")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package cmd provides CLI commands for the scheman tool.
//
// Each command is implemented as a function returning a *cli.Command,
// following the urfave/cli/v3 pattern, and is provided to the fx value group
// "commands". Run assembles them into the root command.
//
// # Available Commands
//
//   - init: Write scheman.yaml and create the migration directory
//   - generate (gen): Create the next numbered migration file
//   - up (run): Apply pending migrations
//   - down (rollback): Roll back the most recently applied migration
//   - rerun (rr): Reapply migrations edited after they were applied
//   - list (ls): Show the changelog
//   - status: Compare migration files with the changelog
//   - shell: Interactive prompt for all of the above
//   - watch: Apply migrations whenever the migration directory changes
//
// # Global Options
//
//   - --dir, -d: Project directory (defaults to current directory)
//   - --config, -c: Configuration file (defaults to scheman.yaml)
//   - --log-level: Log level override
//
// Commands that talk to a database also accept --driver, --url, --user and
// --password, which override the database section of the configuration and
// may be set through SCHEMAN_DB_DRIVER, SCHEMAN_DB_URL, SCHEMAN_DB_USER and
// SCHEMAN_DB_PASSWORD.
//
// # Example Usage
//
//	scheman init
//	scheman generate --desc "create users"
//	scheman up
//	scheman status
//	scheman down --yes
//	scheman --dir ./app watch --driver sqlite --url dev.sqlite3
package cmd

/*
main.go - Application entry point

PURPOSE:
  Starts the tempwork CLI. All behaviour lives in the cobra commands.

COMMANDS:
  serve             Run the HTTP API (see serve.go)
  calc              Compute periods for a contracts file (see calc.go)
  sessions export   Dump saved sessions to a JSON file
  sessions import   Load sessions from a JSON file

CONFIGURATION:
  --config points at a .yaml, .toml or .json file. A missing file means
  defaults. Command-line flags win over the file.

EXAMPLES:
  # Run with in-memory database
  tempwork serve --db=":memory:"

  # Compute periods for a contracts file under the 540-day limit
  tempwork calc contracts.json --limit 540

SEE ALSO:
  - config/config.go: Config file format
  - api/server.go: Router configuration
*/
package main

func main() {
	Execute()
}

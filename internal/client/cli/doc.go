// Package cli provides the interactive taxvault command-line client.
//
// It wires configuration and the REST API client into a REPL. Typical flow:
// use the configured access token (or prompt for one), then execute
// commands until "exit".
//
// Key features:
//   - upload / list / get of encrypted files (decrypted by the server)
//   - export of the yearly tax bundle (ZIP)
//   - yearly summary, monthly breakdown and recent entries
//   - linking an uploaded file to an income or expense entry
package cli

// Package cli provides the interactive InboxMemory AI command-line client.
//
// It wires configuration, the local session store, the API client, and an
// interactive REPL around the signed-in dashboard. Typical flow: restore a
// persisted session (or request a one-time code by email), then browse the
// email knowledge base and ask questions about it.
//
// Key features:
//   - Signup / Login via emailed one-time codes, Verify, Logout
//   - List / Show stored emails
//   - Ask free-form questions answered from the email knowledge base
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

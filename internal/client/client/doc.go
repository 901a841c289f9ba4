// Package client contains client-side building blocks for InboxMemory AI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the InboxMemory backend: Login/Signup/VerifyOTP for the passwordless
//     auth flow, ListEmails/GetEmail for the knowledge base, and Ask for
//     question answering.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     stored bearer token to every request, maps response statuses to
//     sentinel errors, and on any unauthorized response clears the session
//     slot and fires a global session-invalidated hook. The hook is how the
//     hosting application forces the user back to the sign-in surface, no
//     matter which call hit the expired token.
//  3. Bootstrap for the local client database (see OpenDatabase), which holds
//     the durable session slot.
//
// The client never retries: transport failures are returned to the caller,
// which owns the local fallback behavior.
package client

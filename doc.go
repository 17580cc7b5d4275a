// Package auth implements the account credential lifecycle behind the
// ACS auth service: signup with email verification, cookie-based JWT
// sessions, password reset over emailed single-use tokens, and an
// authenticated password change flow.
//
// Lifecycle commands:
//   - Each transition (signup, verification, reset initialize/finalize,
//     password change) is a message plus handler pair with an
//     Execute(ctx, msg) entry point. Handlers orchestrate the Accounts
//     store, the credential hasher, the token service, and the Notifier.
//   - Notifier sends run best-effort: once the store write succeeds the
//     transition stands, a failed email is logged and never rolled back.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     lifecycle handlers to describe signup, login, verification, and
//     password reset events. Sinks run best-effort (errors are logged) so
//     you can forward to a database or queue without blocking requests.
package auth

// Package cli provides an interactive command-line client for the newsfeed
// account service.
//
// The REPL covers the account lifecycle: signup, email confirmation, code
// resend, login, profile view and update, profile image upload and
// resignation. Passwords are read from the terminal without echo. The
// session token lives only in memory and is dropped on logout or
// resignation.
package cli

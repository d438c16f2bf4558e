// Package account manages users and their email and password credentials.
//
// SignUp and SignIn return a signed bearer token alongside the user.
// Passwords are stored as bcrypt hashes and never leave the package:
// User.PasswordHash is excluded from JSON.
//
// The service also implements subscription.ContactDirectory, which lets the
// reminder engine resolve an owner's name and email without depending on
// this package.
package account

// Package auth issues and verifies HS256 session tokens and hashes
// passwords with bcrypt.
package auth

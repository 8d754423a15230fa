// Package models defines the Win Vault data model: roster users, win records,
// the typed update patch, and the monthly insight.
package models

package models

// User is a roster identity. Users are defined at build time and never change.
type User struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Avatar string   `json:"avatar" yaml:"avatar"`
	Team   TeamPool `json:"team" yaml:"team"`
}

// Package model defines the core data types shared across packages.
package model

import "time"

// Entry is one stored version of a namespaced key/value pair.
type Entry struct {
	ID         string     `json:"id"`
	NS         string     `json:"ns"`
	Key        string     `json:"key"`
	Value      string     `json:"value"`
	Version    int        `json:"version"`
	Supersedes string     `json:"supersedes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
